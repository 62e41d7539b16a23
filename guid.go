package bcf

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

// Guid is an RFC-4122-shaped identifier in its canonical 8-4-4-4-12 hex
// form, lowercased. The zero value means "absent".
type Guid string

// IfcGuid is the 22-character compressed identifier format used by the IFC
// building-model standard.
type IfcGuid string

var (
	guidPattern    = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	ifcGuidPattern = regexp.MustCompile(`^[0-9A-Za-z_$]{22}$`)
)

// ParseGuid validates text against the canonical Guid format and returns the
// lowercased value. Failure yields Issues with code CodeInvalidGuid.
func ParseGuid(text string) (Guid, error) {
	if !guidPattern.MatchString(text) {
		return "", Issues{{
			Code:     CodeInvalidGuid,
			Severity: SeverityError,
			Message:  fmt.Sprintf("not a valid Guid: %q", text),
			Params:   map[string]any{"text": text},
		}}
	}
	return Guid(strings.ToLower(text)), nil
}

// ParseIfcGuid validates text as a 22-character IFC identifier.
func ParseIfcGuid(text string) (IfcGuid, error) {
	if !ifcGuidPattern.MatchString(text) {
		return "", Issues{{
			Code:     CodeInvalidIfcGuid,
			Severity: SeverityError,
			Message:  fmt.Sprintf("not a valid IfcGuid: %q", text),
			Params:   map[string]any{"text": text},
		}}
	}
	return IfcGuid(text), nil
}

// NewGuid mints a random version-4 Guid. Authoring flows use this when
// creating topics, comments and viewpoints.
func NewGuid() Guid {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return Guid(fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16]))
}

// IsZero reports whether the Guid is absent.
func (g Guid) IsZero() bool { return g == "" }

func (g Guid) String() string { return string(g) }

func (g IfcGuid) String() string { return string(g) }
