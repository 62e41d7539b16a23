package bcf

import "fmt"

// Builder constructs a markup in memory, enforcing invariants at insertion
// time: a single topic, unique Guids, well-formed identifiers. A model built
// this way validates cleanly without a separate pass; Build still runs
// Validate so cross-references added out of order are caught.
type Builder struct {
	m      Markup
	guids  map[Guid]string
	topics int
	vopts  []ValidateOpt
}

// NewBuilder returns an empty builder.
func NewBuilder(opts ...ValidateOpt) *Builder {
	return &Builder{guids: map[Guid]string{}, vopts: opts}
}

// SetHeader replaces the header.
func (b *Builder) SetHeader(h Header) *Builder {
	b.m.Header = &h
	return b
}

// SetTopic sets the single topic. A second call is rejected: a markup holds
// exactly one topic.
func (b *Builder) SetTopic(t Topic) error {
	if b.topics > 0 {
		return Issues{{
			Path:     "/Markup/Topic",
			Code:     CodeTopicAlreadySet,
			Severity: SeverityError,
			Message:  "markup already has a topic",
		}}
	}
	if err := b.claim(t.Guid, "/Markup/Topic"); err != nil {
		return err
	}
	for i, dr := range t.DocumentReferences {
		if dr.Guid.IsZero() {
			continue
		}
		if err := b.claim(dr.Guid, fmt.Sprintf("/Markup/Topic/DocumentReference[%d]", i+1)); err != nil {
			return err
		}
	}
	b.m.Topic = t
	b.topics++
	return nil
}

// AddComment appends a comment, rejecting duplicate Guids immediately.
func (b *Builder) AddComment(c Comment) error {
	path := fmt.Sprintf("/Markup/Comment[%d]", len(b.m.Comments)+1)
	if err := b.claim(c.Guid, path); err != nil {
		return err
	}
	b.m.Comments = append(b.m.Comments, c)
	return nil
}

// AddViewpoint appends a viewpoint reference, rejecting duplicate Guids
// immediately.
func (b *Builder) AddViewpoint(vp Viewpoint) error {
	path := fmt.Sprintf("/Markup/Viewpoints[%d]", len(b.m.Viewpoints)+1)
	if err := b.claim(vp.Guid, path); err != nil {
		return err
	}
	b.m.Viewpoints = append(b.m.Viewpoints, vp)
	return nil
}

// Build validates the assembled markup and returns the immutable result.
func (b *Builder) Build() (*Validated, error) {
	if b.topics == 0 {
		return nil, Issues{{
			Path:     "/Markup/Topic",
			Code:     CodeTopicMissing,
			Severity: SeverityError,
			Message:  "markup requires exactly one topic",
		}}
	}
	return Validate(&b.m, b.vopts...)
}

// claim registers a Guid, rejecting malformed and duplicate values.
func (b *Builder) claim(g Guid, path string) error {
	if g.IsZero() {
		return Issues{{
			Path:     path,
			Code:     CodeMissingAttribute,
			Severity: SeverityError,
			Message:  "required attribute Guid is missing",
		}}
	}
	if _, err := ParseGuid(string(g)); err != nil {
		return Issues{{
			Path:     path,
			Code:     CodeInvalidGuid,
			Severity: SeverityError,
			Message:  fmt.Sprintf("not a valid Guid: %q", string(g)),
		}}
	}
	if prev, ok := b.guids[g]; ok {
		return Issues{{
			Path:     path,
			Code:     CodeDuplicateGuid,
			Severity: SeverityError,
			Message:  fmt.Sprintf("Guid %s already used at %s", g, prev),
			Params:   map[string]any{"guid": string(g), "firstPath": prev, "secondPath": path},
		}}
	}
	b.guids[g] = path
	return nil
}
