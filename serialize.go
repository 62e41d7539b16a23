package bcf

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"time"
)

// Serialize renders the markup to the wire format. Emission order follows
// the schema's declared sequence (Header, Topic, Comment*, Viewpoints*) so
// consumers that parse positionally interoperate. The round-trip law holds
// structurally: parsing the output yields a model equal to the input.
func Serialize(m *Markup) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write streams the serialized markup to w.
func Write(w io.Writer, m *Markup) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	e := &emitter{enc: xml.NewEncoder(w)}
	e.enc.Indent("", "  ")
	e.markup(m)
	if e.err != nil {
		return e.err
	}
	return e.enc.Flush()
}

// emitter wraps xml.Encoder with sticky-error token helpers.
type emitter struct {
	enc *xml.Encoder
	err error
}

func (e *emitter) token(t xml.Token) {
	if e.err != nil {
		return
	}
	e.err = e.enc.EncodeToken(t)
}

func (e *emitter) start(name string, attrs ...xml.Attr) {
	e.token(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs})
}

func (e *emitter) end(name string) {
	e.token(xml.EndElement{Name: xml.Name{Local: name}})
}

func (e *emitter) simple(name, text string) {
	e.start(name)
	e.token(xml.CharData(text))
	e.end(name)
}

func (e *emitter) guidRef(name string, g Guid) {
	e.start(name, attr("Guid", string(g)))
	e.end(name)
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func boolAttr(name string, v bool) xml.Attr {
	return attr(name, strconv.FormatBool(v))
}

// formatDateTime emits RFC3339 with nanoseconds trimmed, normalized the way
// the values were parsed.
func formatDateTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func (e *emitter) markup(m *Markup) {
	e.start("Markup")
	if m.Header != nil {
		e.header(m.Header)
	}
	e.topic(&m.Topic)
	for i := range m.Comments {
		e.comment(&m.Comments[i])
	}
	for i := range m.Viewpoints {
		e.viewpoint(&m.Viewpoints[i])
	}
	e.end("Markup")
}

func (e *emitter) header(h *Header) {
	e.start("Header")
	for i := range h.Files {
		e.headerFile(&h.Files[i])
	}
	e.end("Header")
}

func (e *emitter) headerFile(f *HeaderFile) {
	var attrs []xml.Attr
	if f.IfcProject != "" {
		attrs = append(attrs, attr("IfcProject", string(f.IfcProject)))
	}
	if f.IfcSpatialStructureElement != "" {
		attrs = append(attrs, attr("IfcSpatialStructureElement", string(f.IfcSpatialStructureElement)))
	}
	if !f.IsExternal { // schema default is true
		attrs = append(attrs, boolAttr("isExternal", f.IsExternal))
	}
	e.start("File", attrs...)
	if f.Filename != "" {
		e.simple("Filename", f.Filename)
	}
	if f.Date != nil {
		e.simple("Date", formatDateTime(*f.Date))
	}
	if f.Reference != "" {
		e.simple("Reference", f.Reference)
	}
	e.end("File")
}

func (e *emitter) topic(t *Topic) {
	attrs := []xml.Attr{attr("Guid", string(t.Guid))}
	if t.Type != "" {
		attrs = append(attrs, attr("TopicType", t.Type))
	}
	if t.Status != "" {
		attrs = append(attrs, attr("TopicStatus", t.Status))
	}
	e.start("Topic", attrs...)
	for _, rl := range t.ReferenceLinks {
		e.simple("ReferenceLink", rl)
	}
	e.simple("Title", t.Title)
	if t.Priority != "" {
		e.simple("Priority", t.Priority)
	}
	if t.Index != nil {
		e.simple("Index", strconv.Itoa(*t.Index))
	}
	for _, l := range t.Labels {
		e.simple("Labels", l)
	}
	e.simple("CreationDate", formatDateTime(t.CreationDate))
	e.simple("CreationAuthor", t.CreationAuthor)
	if t.ModifiedDate != nil {
		e.simple("ModifiedDate", formatDateTime(*t.ModifiedDate))
	}
	if t.ModifiedAuthor != "" {
		e.simple("ModifiedAuthor", t.ModifiedAuthor)
	}
	if t.DueDate != nil {
		e.simple("DueDate", formatDateTime(*t.DueDate))
	}
	if t.AssignedTo != "" {
		e.simple("AssignedTo", t.AssignedTo)
	}
	if t.Stage != "" {
		e.simple("Stage", t.Stage)
	}
	if t.Description != "" {
		e.simple("Description", t.Description)
	}
	if t.BimSnippet != nil {
		e.bimSnippet(t.BimSnippet)
	}
	for i := range t.DocumentReferences {
		e.documentReference(&t.DocumentReferences[i])
	}
	for _, rt := range t.RelatedTopics {
		e.guidRef("RelatedTopic", rt)
	}
	e.end("Topic")
}

func (e *emitter) bimSnippet(bs *BimSnippet) {
	attrs := []xml.Attr{attr("SnippetType", bs.SnippetType)}
	if bs.IsExternal { // schema default is false
		attrs = append(attrs, boolAttr("isExternal", bs.IsExternal))
	}
	e.start("BimSnippet", attrs...)
	e.simple("Reference", bs.Reference)
	e.simple("ReferenceSchema", bs.ReferenceSchema)
	e.end("BimSnippet")
}

func (e *emitter) documentReference(dr *DocumentReference) {
	var attrs []xml.Attr
	if !dr.Guid.IsZero() {
		attrs = append(attrs, attr("Guid", string(dr.Guid)))
	}
	if dr.IsExternal { // schema default is false
		attrs = append(attrs, boolAttr("isExternal", dr.IsExternal))
	}
	e.start("DocumentReference", attrs...)
	if dr.ReferencedDocument != "" {
		e.simple("ReferencedDocument", dr.ReferencedDocument)
	}
	if dr.Description != "" {
		e.simple("Description", dr.Description)
	}
	e.end("DocumentReference")
}

func (e *emitter) comment(c *Comment) {
	e.start("Comment", attr("Guid", string(c.Guid)))
	e.simple("Date", formatDateTime(c.Date))
	e.simple("Author", c.Author)
	e.simple("Comment", c.Text)
	if !c.Viewpoint.IsZero() {
		e.guidRef("Viewpoint", c.Viewpoint)
	}
	if c.ModifiedDate != nil {
		e.simple("ModifiedDate", formatDateTime(*c.ModifiedDate))
	}
	if c.ModifiedAuthor != "" {
		e.simple("ModifiedAuthor", c.ModifiedAuthor)
	}
	e.end("Comment")
}

func (e *emitter) viewpoint(vp *Viewpoint) {
	e.start("Viewpoints", attr("Guid", string(vp.Guid)))
	if vp.File != "" {
		e.simple("Viewpoint", vp.File)
	}
	if vp.Snapshot != "" {
		e.simple("Snapshot", vp.Snapshot)
	}
	if vp.Index != nil {
		e.simple("Index", strconv.Itoa(*vp.Index))
	}
	e.end("Viewpoints")
}
