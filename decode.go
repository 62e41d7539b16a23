package bcf

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Occurrence tables for the markup vocabulary. Declared once at package
// init and never mutated, so parsers on independent goroutines share them
// freely. max < 0 means unbounded.
type childDecl struct {
	name string
	min  int
	max  int
}

var (
	markupChildren = []childDecl{
		{"Header", 0, 1},
		{"Topic", 1, 1},
		{"Comment", 0, -1},
		{"Viewpoints", 0, -1},
	}
	headerChildren = []childDecl{
		{"File", 0, -1},
	}
	fileChildren = []childDecl{
		{"Filename", 0, 1},
		{"Date", 0, 1},
		{"Reference", 0, 1},
	}
	topicChildren = []childDecl{
		{"ReferenceLink", 0, -1},
		{"Title", 1, 1},
		{"Priority", 0, 1},
		{"Index", 0, 1},
		{"Labels", 0, -1},
		{"CreationDate", 1, 1},
		{"CreationAuthor", 1, 1},
		{"ModifiedDate", 0, 1},
		{"ModifiedAuthor", 0, 1},
		{"DueDate", 0, 1},
		{"AssignedTo", 0, 1},
		{"Stage", 0, 1},
		{"Description", 0, 1},
		{"BimSnippet", 0, 1},
		{"DocumentReference", 0, -1},
		{"RelatedTopic", 0, -1},
	}
	bimSnippetChildren = []childDecl{
		{"Reference", 1, 1},
		{"ReferenceSchema", 1, 1},
	}
	documentReferenceChildren = []childDecl{
		{"ReferencedDocument", 0, 1},
		{"Description", 0, 1},
	}
	commentChildren = []childDecl{
		{"Date", 1, 1},
		{"Author", 1, 1},
		{"Comment", 1, 1},
		{"Viewpoint", 0, 1},
		{"ModifiedDate", 0, 1},
		{"ModifiedAuthor", 0, 1},
	}
	viewpointChildren = []childDecl{
		{"Viewpoint", 0, 1},
		{"Snapshot", 0, 1},
		{"Index", 0, 1},
	}
)

// dateTimeLayouts accepted on input. Output always uses RFC3339Nano.
// Producers in the wild omit the zone designator or emit bare dates, so both
// are accepted and interpreted as UTC.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

type parser struct {
	dec    *xml.Decoder
	opt    ParseOpt
	issues Issues
	path   []string
}

func newParser(data []byte, opt ParseOpt) *parser {
	return &parser{dec: xml.NewDecoder(bytes.NewReader(data)), opt: opt}
}

func (p *parser) pathString() string {
	if len(p.path) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.path, "/")
}

func (p *parser) push(seg string) { p.path = append(p.path, seg) }
func (p *parser) pop()            { p.path = p.path[:len(p.path)-1] }

func (p *parser) report(sev Severity, code, format string, args ...any) {
	p.issues = AppendIssues(p.issues, Issue{
		Path:     p.pathString(),
		Code:     code,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (p *parser) errorf(code, format string, args ...any) {
	p.report(SeverityError, code, format, args...)
}

func (p *parser) warnf(code, format string, args ...any) {
	p.report(SeverityWarning, code, format, args...)
}

// aborted reports whether the walk should stop early under FailFast.
func (p *parser) aborted() bool {
	return p.opt.FailFast && p.issues.HasErrors()
}

func (p *parser) parseDocument() *Markup {
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			p.errorf(CodeXMLSyntax, "document has no root element")
			return nil
		}
		if err != nil {
			p.errorf(CodeXMLSyntax, "%v", err)
			return nil
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue // prolog: proc insts, comments, whitespace
		}
		if start.Name.Local != "Markup" {
			p.push(start.Name.Local)
			p.errorf(CodeUnexpectedRoot, "expected root element Markup, got %s", start.Name.Local)
			return nil
		}
		p.push("Markup")
		m := p.parseMarkup(start)
		p.pop()
		return m
	}
}

func (p *parser) parseMarkup(start xml.StartElement) *Markup {
	m := &Markup{}
	p.attrs(start, nil)
	p.forEachChild(markupChildren, func(el xml.StartElement) {
		switch el.Name.Local {
		case "Header":
			m.Header = p.parseHeader(el)
		case "Topic":
			m.Topic = p.parseTopic(el)
		case "Comment":
			m.Comments = append(m.Comments, p.parseComment(el))
		case "Viewpoints":
			m.Viewpoints = append(m.Viewpoints, p.parseViewpoint(el))
		}
	})
	return m
}

func (p *parser) parseHeader(start xml.StartElement) *Header {
	h := &Header{}
	p.attrs(start, nil)
	p.forEachChild(headerChildren, func(el xml.StartElement) {
		h.Files = append(h.Files, p.parseHeaderFile(el))
	})
	return h
}

func (p *parser) parseHeaderFile(start xml.StartElement) HeaderFile {
	f := HeaderFile{IsExternal: true}
	p.attrs(start, map[string]func(string){
		"IfcProject":                 func(v string) { f.IfcProject = p.lexIfcGuid(v) },
		"IfcSpatialStructureElement": func(v string) { f.IfcSpatialStructureElement = p.lexIfcGuid(v) },
		"isExternal":                 func(v string) { f.IsExternal = p.lexBool(v) },
	})
	p.forEachChild(fileChildren, func(el xml.StartElement) {
		switch el.Name.Local {
		case "Filename":
			f.Filename = p.readText()
		case "Date":
			f.Date = p.lexDateTimePtr(p.readText())
		case "Reference":
			f.Reference = p.readText()
		}
	})
	return f
}

func (p *parser) parseTopic(start xml.StartElement) Topic {
	t := Topic{}
	guidSeen := false
	p.attrs(start, map[string]func(string){
		"Guid":        func(v string) { guidSeen = true; t.Guid = p.lexGuid(v) },
		"TopicType":   func(v string) { t.Type = v },
		"TopicStatus": func(v string) { t.Status = v },
	})
	if !guidSeen {
		p.errorf(CodeMissingAttribute, "required attribute Guid is missing")
	}
	p.forEachChild(topicChildren, func(el xml.StartElement) {
		switch el.Name.Local {
		case "ReferenceLink":
			t.ReferenceLinks = append(t.ReferenceLinks, p.readText())
		case "Title":
			t.Title = p.readText()
		case "Priority":
			t.Priority = p.readText()
		case "Index":
			t.Index = p.lexIntPtr(p.readText())
		case "Labels":
			t.Labels = append(t.Labels, p.readText())
		case "CreationDate":
			t.CreationDate = p.lexDateTime(p.readText())
		case "CreationAuthor":
			t.CreationAuthor = p.readText()
		case "ModifiedDate":
			t.ModifiedDate = p.lexDateTimePtr(p.readText())
		case "ModifiedAuthor":
			t.ModifiedAuthor = p.readText()
		case "DueDate":
			t.DueDate = p.lexDateTimePtr(p.readText())
		case "AssignedTo":
			t.AssignedTo = p.readText()
		case "Stage":
			t.Stage = p.readText()
		case "Description":
			t.Description = p.readText()
		case "BimSnippet":
			bs := p.parseBimSnippet(el)
			t.BimSnippet = &bs
		case "DocumentReference":
			t.DocumentReferences = append(t.DocumentReferences, p.parseDocumentReference(el))
		case "RelatedTopic":
			t.RelatedTopics = append(t.RelatedTopics, p.parseGuidRef(el))
		}
	})
	return t
}

func (p *parser) parseBimSnippet(start xml.StartElement) BimSnippet {
	bs := BimSnippet{}
	typeSeen := false
	p.attrs(start, map[string]func(string){
		"SnippetType": func(v string) { typeSeen = true; bs.SnippetType = v },
		"isExternal":  func(v string) { bs.IsExternal = p.lexBool(v) },
	})
	if !typeSeen {
		p.errorf(CodeMissingAttribute, "required attribute SnippetType is missing")
	}
	p.forEachChild(bimSnippetChildren, func(el xml.StartElement) {
		switch el.Name.Local {
		case "Reference":
			bs.Reference = p.readText()
		case "ReferenceSchema":
			bs.ReferenceSchema = p.readText()
		}
	})
	return bs
}

func (p *parser) parseDocumentReference(start xml.StartElement) DocumentReference {
	dr := DocumentReference{}
	p.attrs(start, map[string]func(string){
		"Guid":       func(v string) { dr.Guid = p.lexGuid(v) },
		"isExternal": func(v string) { dr.IsExternal = p.lexBool(v) },
	})
	p.forEachChild(documentReferenceChildren, func(el xml.StartElement) {
		switch el.Name.Local {
		case "ReferencedDocument":
			dr.ReferencedDocument = p.readText()
		case "Description":
			dr.Description = p.readText()
		}
	})
	return dr
}

func (p *parser) parseComment(start xml.StartElement) Comment {
	c := Comment{}
	guidSeen := false
	p.attrs(start, map[string]func(string){
		"Guid": func(v string) { guidSeen = true; c.Guid = p.lexGuid(v) },
	})
	if !guidSeen {
		p.errorf(CodeMissingAttribute, "required attribute Guid is missing")
	}
	p.forEachChild(commentChildren, func(el xml.StartElement) {
		switch el.Name.Local {
		case "Date":
			c.Date = p.lexDateTime(p.readText())
		case "Author":
			c.Author = p.readText()
		case "Comment":
			c.Text = p.readText()
		case "Viewpoint":
			c.Viewpoint = p.parseGuidRef(el)
		case "ModifiedDate":
			c.ModifiedDate = p.lexDateTimePtr(p.readText())
		case "ModifiedAuthor":
			c.ModifiedAuthor = p.readText()
		}
	})
	return c
}

func (p *parser) parseViewpoint(start xml.StartElement) Viewpoint {
	vp := Viewpoint{}
	guidSeen := false
	p.attrs(start, map[string]func(string){
		"Guid": func(v string) { guidSeen = true; vp.Guid = p.lexGuid(v) },
	})
	if !guidSeen {
		p.errorf(CodeMissingAttribute, "required attribute Guid is missing")
	}
	p.forEachChild(viewpointChildren, func(el xml.StartElement) {
		switch el.Name.Local {
		case "Viewpoint":
			vp.File = p.readText()
		case "Snapshot":
			vp.Snapshot = p.readText()
		case "Index":
			vp.Index = p.lexIntPtr(p.readText())
		}
	})
	return vp
}

// parseGuidRef handles the bare-reference elements (Comment/Viewpoint and
// Topic/RelatedTopic): a required Guid attribute and no declared content.
func (p *parser) parseGuidRef(start xml.StartElement) Guid {
	var g Guid
	guidSeen := false
	p.attrs(start, map[string]func(string){
		"Guid": func(v string) { guidSeen = true; g = p.lexGuid(v) },
	})
	if !guidSeen {
		p.errorf(CodeMissingAttribute, "required attribute Guid is missing")
	}
	if err := p.dec.Skip(); err != nil {
		p.errorf(CodeXMLSyntax, "%v", err)
	}
	return g
}

// forEachChild iterates the direct children of the element whose start tag
// has already been consumed, dispatching declared children to handle and
// applying the unknown policy to the rest. It consumes the matching end tag
// and reports occurrence violations against decl.
func (p *parser) forEachChild(decl []childDecl, handle func(el xml.StartElement)) {
	seen := make(map[string]int, len(decl))
	for {
		if p.aborted() {
			return
		}
		tok, err := p.dec.Token()
		if err != nil {
			p.errorf(CodeXMLSyntax, "%v", err)
			return
		}
		switch t := tok.(type) {
		case xml.StartElement:
			d, ok := lookupChild(decl, t.Name.Local)
			if !ok {
				p.unknownElement(t)
				continue
			}
			seen[d.name]++
			n := seen[d.name]
			if d.max >= 0 && n > d.max {
				p.push(d.name)
				p.errorf(CodeTooManyOccurrences, "element %s occurs more than %d time(s)", d.name, d.max)
				p.pop()
				if err := p.dec.Skip(); err != nil {
					p.errorf(CodeXMLSyntax, "%v", err)
					return
				}
				continue
			}
			seg := d.name
			if d.max < 0 || d.max > 1 {
				seg = fmt.Sprintf("%s[%d]", d.name, n)
			}
			p.push(seg)
			handle(t)
			p.pop()
		case xml.EndElement:
			for _, d := range decl {
				if seen[d.name] < d.min {
					p.push(d.name)
					p.errorf(CodeMissingElement, "required element %s is missing", d.name)
					p.pop()
				}
			}
			return
		}
	}
}

func lookupChild(decl []childDecl, name string) (childDecl, bool) {
	for _, d := range decl {
		if d.name == name {
			return d, true
		}
	}
	return childDecl{}, false
}

// attrs dispatches declared attributes to their setters. Namespace
// declarations and foreign-namespace attributes are accepted and ignored;
// undeclared local attributes follow the unknown policy.
func (p *parser) attrs(start xml.StartElement, known map[string]func(string)) {
	for _, a := range start.Attr {
		if a.Name.Space != "" || a.Name.Local == "xmlns" {
			continue
		}
		fn, ok := known[a.Name.Local]
		if !ok {
			p.push("@" + a.Name.Local)
			if p.opt.Unknown == UnknownStrict {
				p.errorf(CodeUnknownAttribute, "attribute %s is not declared", a.Name.Local)
			} else {
				p.warnf(CodeUnknownAttribute, "ignoring undeclared attribute %s", a.Name.Local)
			}
			p.pop()
			continue
		}
		fn(a.Value)
	}
}

func (p *parser) unknownElement(el xml.StartElement) {
	p.push(el.Name.Local)
	if p.opt.Unknown == UnknownStrict {
		p.errorf(CodeUnknownElement, "element %s is not declared", el.Name.Local)
	} else {
		p.warnf(CodeUnknownElement, "ignoring undeclared element %s", el.Name.Local)
	}
	p.pop()
	if err := p.dec.Skip(); err != nil {
		p.errorf(CodeXMLSyntax, "%v", err)
	}
}

// readText consumes the content of a simple element up to its end tag and
// returns the trimmed character data. Nested elements are undeclared by
// definition here and follow the unknown policy.
func (p *parser) readText() string {
	var sb strings.Builder
	for {
		tok, err := p.dec.Token()
		if err != nil {
			p.errorf(CodeXMLSyntax, "%v", err)
			return sb.String()
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			p.unknownElement(t)
		case xml.EndElement:
			return strings.TrimSpace(sb.String())
		}
	}
}

// ---- primitive lexing ----

func (p *parser) lexBool(text string) bool {
	switch text {
	case "true", "1":
		return true
	case "false", "0":
		return false
	}
	p.errorf(CodeInvalidValue, "expected boolean, got %q", text)
	return false
}

func (p *parser) lexIntPtr(text string) *int {
	n, err := strconv.Atoi(text)
	if err != nil {
		p.errorf(CodeInvalidValue, "expected integer, got %q", text)
		return nil
	}
	return &n
}

func (p *parser) lexDateTime(text string) time.Time {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}
	p.errorf(CodeInvalidValue, "expected ISO-8601 dateTime, got %q", text)
	return time.Time{}
}

func (p *parser) lexDateTimePtr(text string) *time.Time {
	t := p.lexDateTime(text)
	if t.IsZero() {
		return nil
	}
	return &t
}

func (p *parser) lexGuid(text string) Guid {
	g, err := ParseGuid(text)
	if err != nil {
		p.errorf(CodeInvalidGuid, "not a valid Guid: %q", text)
		return ""
	}
	return g
}

func (p *parser) lexIfcGuid(text string) IfcGuid {
	g, err := ParseIfcGuid(text)
	if err != nil {
		p.errorf(CodeInvalidIfcGuid, "not a valid IfcGuid: %q", text)
		return ""
	}
	return g
}
