package bcf

import (
	"io"
)

// Parse is the primary entry point. It walks the raw document tag by tag,
// enforcing the markup schema's element structure, occurrence rules and
// primitive datatypes. Structural errors are fatal for the document: no
// partial tree is returned. Lenient-mode records about undeclared vendor
// nodes are dropped; use ParseWithWarnings to observe them.
func Parse(data []byte, opts ...ParseOpt) (*Markup, error) {
	m, _, err := ParseWithWarnings(data, opts...)
	return m, err
}

// ParseWithWarnings parses like Parse and additionally surfaces the advisory
// records collected along the way (undeclared elements and attributes seen
// under the lenient unknown policy).
func ParseWithWarnings(data []byte, opts ...ParseOpt) (*Markup, Issues, error) {
	opt := lastParseOpt(opts)
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, nil, Issues{{
			Code:     CodeTruncated,
			Severity: SeverityError,
			Message:  "max bytes exceeded",
		}}
	}
	p := newParser(data, opt)
	m := p.parseDocument()
	if p.issues.HasErrors() {
		return nil, p.issues.Warnings(), p.issues.Errors()
	}
	return m, p.issues.Warnings(), nil
}

// ParseReader reads the whole document from r and parses it. When
// ParseOpt.MaxBytes is set the size cap is enforced up front.
func ParseReader(r io.Reader, opts ...ParseOpt) (*Markup, error) {
	opt := lastParseOpt(opts)
	var data []byte
	var err error
	if opt.MaxBytes > 0 {
		data, err = io.ReadAll(io.LimitReader(r, opt.MaxBytes+1))
	} else {
		data, err = io.ReadAll(r)
	}
	if err != nil {
		return nil, Issues{{Code: CodeXMLSyntax, Severity: SeverityError, Message: err.Error()}}
	}
	return Parse(data, opts...)
}
