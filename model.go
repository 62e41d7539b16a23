package bcf

import (
	"sort"
	"time"
)

// Markup is the root of a BCF Markup document: one topic plus its comments
// and viewpoint references.
type Markup struct {
	Header     *Header     `json:"header,omitempty"`
	Topic      Topic       `json:"topic"`
	Comments   []Comment   `json:"comments,omitempty"`
	Viewpoints []Viewpoint `json:"viewpoints,omitempty"`
}

// Header carries the file records describing which IFC models the topic
// refers to.
type Header struct {
	Files []HeaderFile `json:"files,omitempty"`
}

// HeaderFile represents one Header/File record.
type HeaderFile struct {
	IfcProject                 IfcGuid    `json:"ifcProject,omitempty"`
	IfcSpatialStructureElement IfcGuid    `json:"ifcSpatialStructureElement,omitempty"`
	IsExternal                 bool       `json:"isExternal"` // schema default: true
	Filename                   string     `json:"filename,omitempty"`
	Date                       *time.Time `json:"date,omitempty"`
	Reference                  string     `json:"reference,omitempty"`
}

// Topic is a single issue/discussion entry.
type Topic struct {
	Guid           Guid       `json:"guid"`
	Type           string     `json:"topicType,omitempty"`   // open enum
	Status         string     `json:"topicStatus,omitempty"` // open enum
	ReferenceLinks []string   `json:"referenceLinks,omitempty"`
	Title          string     `json:"title"`
	Priority       string     `json:"priority,omitempty"` // open enum
	Index          *int       `json:"index,omitempty"`
	Labels         []string   `json:"labels,omitempty"` // open enum
	CreationDate   time.Time  `json:"creationDate"`
	CreationAuthor string     `json:"creationAuthor"`
	ModifiedDate   *time.Time `json:"modifiedDate,omitempty"`
	ModifiedAuthor string     `json:"modifiedAuthor,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	AssignedTo     string     `json:"assignedTo,omitempty"`
	Stage          string     `json:"stage,omitempty"` // open enum
	Description    string     `json:"description,omitempty"`

	BimSnippet         *BimSnippet         `json:"bimSnippet,omitempty"`
	DocumentReferences []DocumentReference `json:"documentReferences,omitempty"`
	RelatedTopics      []Guid              `json:"relatedTopics,omitempty"`
}

// BimSnippet references a code/data fragment illustrating the issue.
type BimSnippet struct {
	SnippetType     string `json:"snippetType"`
	IsExternal      bool   `json:"isExternal"` // schema default: false
	Reference       string `json:"reference,omitempty"`
	ReferenceSchema string `json:"referenceSchema,omitempty"`
}

// DocumentReference points at a document related to the topic.
type DocumentReference struct {
	Guid               Guid   `json:"guid,omitempty"`
	IsExternal         bool   `json:"isExternal"` // schema default: false
	ReferencedDocument string `json:"referencedDocument,omitempty"`
	Description        string `json:"description,omitempty"`
}

// Comment is a single discussion entry under the topic.
type Comment struct {
	Guid           Guid       `json:"guid"`
	Date           time.Time  `json:"date"`
	Author         string     `json:"author"`
	Text           string     `json:"comment"`
	Viewpoint      Guid       `json:"viewpoint,omitempty"` // reference into Markup.Viewpoints
	ModifiedDate   *time.Time `json:"modifiedDate,omitempty"`
	ModifiedAuthor string     `json:"modifiedAuthor,omitempty"`
}

// Viewpoint references a viewpoint-definition file and optional snapshot
// image by filename. The core never reads the referenced files; the
// container layer does.
type Viewpoint struct {
	Guid     Guid   `json:"guid"`
	File     string `json:"viewpoint,omitempty"` // viewpoint definition filename
	Snapshot string `json:"snapshot,omitempty"`
	Index    *int   `json:"index,omitempty"`
}

// ViewpointByGuid returns the viewpoint with the given Guid, or nil.
func (m *Markup) ViewpointByGuid(g Guid) *Viewpoint {
	for i := range m.Viewpoints {
		if m.Viewpoints[i].Guid == g {
			return &m.Viewpoints[i]
		}
	}
	return nil
}

// ViewpointFiles collects the viewpoint-definition filenames referenced by
// the document, for the container layer to resolve.
func (m *Markup) ViewpointFiles() []string {
	var out []string
	for _, vp := range m.Viewpoints {
		if vp.File != "" {
			out = append(out, vp.File)
		}
	}
	return out
}

// SnapshotFiles collects the snapshot filenames referenced by the document.
func (m *Markup) SnapshotFiles() []string {
	var out []string
	for _, vp := range m.Viewpoints {
		if vp.Snapshot != "" {
			out = append(out, vp.Snapshot)
		}
	}
	return out
}

// SortViewpoints stable-sorts the viewpoints by Index. Entries without an
// Index keep their relative order after indexed ones.
func (m *Markup) SortViewpoints() {
	sort.SliceStable(m.Viewpoints, func(i, j int) bool {
		a, b := m.Viewpoints[i].Index, m.Viewpoints[j].Index
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}

// Clone returns a deep copy of the markup.
func (m *Markup) Clone() *Markup {
	if m == nil {
		return nil
	}
	cpy := *m
	if m.Header != nil {
		h := Header{Files: append([]HeaderFile(nil), m.Header.Files...)}
		for i := range h.Files {
			h.Files[i].Date = cloneTime(h.Files[i].Date)
		}
		cpy.Header = &h
	}
	cpy.Topic = cloneTopic(m.Topic)
	cpy.Comments = append([]Comment(nil), m.Comments...)
	for i := range cpy.Comments {
		cpy.Comments[i].ModifiedDate = cloneTime(cpy.Comments[i].ModifiedDate)
	}
	cpy.Viewpoints = append([]Viewpoint(nil), m.Viewpoints...)
	for i := range cpy.Viewpoints {
		cpy.Viewpoints[i].Index = cloneInt(cpy.Viewpoints[i].Index)
	}
	return &cpy
}

func cloneTopic(t Topic) Topic {
	cpy := t
	cpy.ReferenceLinks = append([]string(nil), t.ReferenceLinks...)
	cpy.Labels = append([]string(nil), t.Labels...)
	cpy.Index = cloneInt(t.Index)
	cpy.ModifiedDate = cloneTime(t.ModifiedDate)
	cpy.DueDate = cloneTime(t.DueDate)
	if t.BimSnippet != nil {
		bs := *t.BimSnippet
		cpy.BimSnippet = &bs
	}
	cpy.DocumentReferences = append([]DocumentReference(nil), t.DocumentReferences...)
	cpy.RelatedTopics = append([]Guid(nil), t.RelatedTopics...)
	return cpy
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
