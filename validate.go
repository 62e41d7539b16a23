package bcf

import (
	"fmt"
	"net/url"
)

// Validated is the immutable result of successful validation. It owns a
// private copy of the markup, so later mutation of the input cannot
// invalidate it.
type Validated struct {
	markup   *Markup
	warnings Issues
}

// Markup returns the validated model. Callers must treat it as read-only;
// use Clone for a mutable copy.
func (v *Validated) Markup() *Markup { return v.markup }

// Warnings returns the advisory diagnostics collected during validation.
func (v *Validated) Warnings() Issues { return v.warnings }

// Serialize renders the validated markup back to the wire format.
func (v *Validated) Serialize() ([]byte, error) { return Serialize(v.markup) }

// Validate enforces the constraints the markup schema cannot express
// declaratively: Guid uniqueness, cross-entity reference resolution, enum
// plausibility and reference coherence. All violations are collected; the
// validator never stops at the first error. On success the returned error is
// nil and warnings, if any, are available on the Validated.
func Validate(m *Markup, opts ...ValidateOpt) (*Validated, error) {
	opt := lastValidateOpt(opts)
	v := &validator{opt: opt}
	v.run(m)
	if v.issues.HasErrors() {
		return nil, v.issues.Errors()
	}
	return &Validated{markup: m.Clone(), warnings: v.issues.Warnings()}, nil
}

type validator struct {
	opt    ValidateOpt
	issues Issues
}

func (v *validator) report(sev Severity, path, code, format string, args ...any) *Issue {
	v.issues = AppendIssues(v.issues, Issue{
		Path:     path,
		Code:     code,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	})
	return &v.issues[len(v.issues)-1]
}

func (v *validator) run(m *Markup) {
	v.checkRequired(m)
	index := v.checkUniqueness(m)
	v.checkReferences(m, index)
	v.checkEnums(m)
	v.checkCoherence(m)
}

// checkRequired re-verifies required fields and Guid formats so that
// hand-constructed models get the same guarantees as parsed ones.
func (v *validator) checkRequired(m *Markup) {
	v.requireGuid(m.Topic.Guid, "/Markup/Topic")
	if m.Topic.Title == "" {
		v.report(SeverityError, "/Markup/Topic/Title", CodeMissingElement, "topic title is required")
	}
	if m.Topic.CreationDate.IsZero() {
		v.report(SeverityError, "/Markup/Topic/CreationDate", CodeMissingElement, "topic creation date is required")
	}
	if m.Topic.CreationAuthor == "" {
		v.report(SeverityError, "/Markup/Topic/CreationAuthor", CodeMissingElement, "topic creation author is required")
	}
	for i, c := range m.Comments {
		path := fmt.Sprintf("/Markup/Comment[%d]", i+1)
		v.requireGuid(c.Guid, path)
		if c.Date.IsZero() {
			v.report(SeverityError, path+"/Date", CodeMissingElement, "comment date is required")
		}
		if c.Author == "" {
			v.report(SeverityError, path+"/Author", CodeMissingElement, "comment author is required")
		}
	}
	for i, vp := range m.Viewpoints {
		v.requireGuid(vp.Guid, fmt.Sprintf("/Markup/Viewpoints[%d]", i+1))
	}
}

func (v *validator) requireGuid(g Guid, path string) {
	if g.IsZero() {
		v.report(SeverityError, path, CodeMissingAttribute, "required attribute Guid is missing")
		return
	}
	if _, err := ParseGuid(string(g)); err != nil {
		v.report(SeverityError, path, CodeInvalidGuid, "not a valid Guid: %q", string(g))
	}
}

// guidIndex maps each identifying Guid to the paths of the entities that
// carry it. A single linear scan builds it; reference checks are O(1) after.
type guidIndex struct {
	all        map[Guid][]string
	topics     map[Guid]bool
	viewpoints map[Guid]bool
}

func (v *validator) checkUniqueness(m *Markup) guidIndex {
	idx := guidIndex{
		all:        map[Guid][]string{},
		topics:     map[Guid]bool{},
		viewpoints: map[Guid]bool{},
	}
	record := func(g Guid, path string) {
		if g.IsZero() {
			return
		}
		prev := idx.all[g]
		if len(prev) > 0 {
			// one DuplicateGuid per colliding pair: first occurrence vs this one
			iss := v.report(SeverityError, path, CodeDuplicateGuid,
				"Guid %s already used at %s", g, prev[0])
			iss.Params = map[string]any{"guid": string(g), "firstPath": prev[0], "secondPath": path}
		}
		idx.all[g] = append(prev, path)
	}

	record(m.Topic.Guid, "/Markup/Topic")
	idx.topics[m.Topic.Guid] = true
	for i, dr := range m.Topic.DocumentReferences {
		record(dr.Guid, fmt.Sprintf("/Markup/Topic/DocumentReference[%d]", i+1))
	}
	for i, c := range m.Comments {
		record(c.Guid, fmt.Sprintf("/Markup/Comment[%d]", i+1))
	}
	for i, vp := range m.Viewpoints {
		path := fmt.Sprintf("/Markup/Viewpoints[%d]", i+1)
		record(vp.Guid, path)
		if !vp.Guid.IsZero() {
			idx.viewpoints[vp.Guid] = true
		}
	}
	return idx
}

func (v *validator) checkReferences(m *Markup, idx guidIndex) {
	for i, c := range m.Comments {
		if c.Viewpoint.IsZero() {
			continue
		}
		if !idx.viewpoints[c.Viewpoint] {
			iss := v.report(SeverityError, fmt.Sprintf("/Markup/Comment[%d]/Viewpoint", i+1),
				CodeDanglingReference, "comment %s references unknown viewpoint %s", c.Guid, c.Viewpoint)
			iss.Params = map[string]any{
				"from":         string(c.Guid),
				"guid":         string(c.Viewpoint),
				"expectedKind": "Viewpoint",
			}
		}
	}
	// Within a single markup only self-reference is structurally checkable;
	// resolution across a multi-topic container belongs to the container
	// layer, so unresolved entries are advisory.
	for i, rt := range m.Topic.RelatedTopics {
		if rt.IsZero() || idx.topics[rt] {
			continue
		}
		iss := v.report(SeverityWarning, fmt.Sprintf("/Markup/Topic/RelatedTopic[%d]", i+1),
			CodeDanglingReference, "related topic %s does not resolve within this markup", rt)
		iss.Params = map[string]any{
			"from":         string(m.Topic.Guid),
			"guid":         string(rt),
			"expectedKind": "Topic",
		}
	}
}

func (v *validator) checkEnums(m *Markup) {
	pol := v.opt.Enums
	if pol == nil {
		return
	}
	sev := SeverityWarning
	if v.opt.StrictEnums {
		sev = SeverityError
	}
	check := func(path, field, value string, allowed []string) {
		if value == "" || pol.allows(allowed, value) {
			return
		}
		iss := v.report(sev, path, CodeUnknownEnumValue, "%s %q is not in the permitted value set", field, value)
		iss.Params = map[string]any{"field": field, "value": value}
	}
	check("/Markup/Topic", "TopicType", m.Topic.Type, pol.TopicTypes)
	check("/Markup/Topic", "TopicStatus", m.Topic.Status, pol.TopicStatuses)
	check("/Markup/Topic/Priority", "Priority", m.Topic.Priority, pol.Priorities)
	check("/Markup/Topic/Stage", "Stage", m.Topic.Stage, pol.Stages)
	for i, l := range m.Topic.Labels {
		check(fmt.Sprintf("/Markup/Topic/Labels[%d]", i+1), "Label", l, pol.Labels)
	}
}

func (v *validator) checkCoherence(m *Markup) {
	if bs := m.Topic.BimSnippet; bs != nil && bs.IsExternal && !urlShaped(bs.Reference) {
		v.report(SeverityWarning, "/Markup/Topic/BimSnippet/Reference", CodeExternalShape,
			"isExternal is true but Reference %q is not URL-shaped", bs.Reference)
	}
	if m.Topic.DueDate != nil && !m.Topic.CreationDate.IsZero() &&
		m.Topic.DueDate.Before(m.Topic.CreationDate) {
		v.report(SeverityWarning, "/Markup/Topic/DueDate", CodeDueBeforeCreation,
			"due date %s is earlier than creation date %s",
			m.Topic.DueDate.Format("2006-01-02"), m.Topic.CreationDate.Format("2006-01-02"))
	}
}

func urlShaped(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != ""
}
