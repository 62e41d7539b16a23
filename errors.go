package bcf

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Lexical codes (Guid codec)
	CodeInvalidGuid    = "invalid_guid"
	CodeInvalidIfcGuid = "invalid_ifc_guid"

	// Structural codes (parser)
	CodeXMLSyntax          = "xml_syntax"
	CodeUnexpectedRoot     = "unexpected_root"
	CodeMissingElement     = "missing_required_element"
	CodeMissingAttribute   = "missing_required_attribute"
	CodeTooManyOccurrences = "too_many_occurrences"
	CodeInvalidValue       = "invalid_value"
	CodeUnknownElement     = "unknown_element"
	CodeUnknownAttribute   = "unknown_attribute"
	CodeTruncated          = "truncated"

	// Semantic codes (validator)
	CodeDuplicateGuid     = "duplicate_guid"
	CodeDanglingReference = "dangling_reference"
	CodeUnknownEnumValue  = "unknown_enum_value"
	CodeExternalShape     = "external_reference_shape"
	CodeDueBeforeCreation = "due_date_before_creation"

	// Builder codes
	CodeTopicAlreadySet = "topic_already_set"
	CodeTopicMissing    = "topic_missing"
)

// Severity expresses the severity level for issues. Warnings never block
// success; errors always do.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// MarshalJSON renders the severity as its string form.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON accepts the string form produced by MarshalJSON.
func (s *Severity) UnmarshalJSON(data []byte) error {
	if string(data) == `"error"` {
		*s = SeverityError
	} else {
		*s = SeverityWarning
	}
	return nil
}

// Issue represents a single diagnostic entry.
type Issue struct {
	Path     string   `json:"path"` // Slash-separated element path (for example: /Markup/Comment[2]/Viewpoint).
	Code     string   `json:"code"` // One of the codes listed above.
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	// Params carries structured parameters (e.g., {"guid":"...", "expected":"Viewpoint"})
	// for observability and machine consumption.
	Params map[string]any `json:"params,omitempty"`
}

// Issues is a collection of diagnostics that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. dangling_reference at /Markup/Comment[1]/Viewpoint
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// HasErrors reports whether any issue carries SeverityError.
func (iss Issues) HasErrors() bool {
	for _, it := range iss {
		if it.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the hard errors.
func (iss Issues) Errors() Issues {
	var out Issues
	for _, it := range iss {
		if it.Severity == SeverityError {
			out = append(out, it)
		}
	}
	return out
}

// Warnings returns only the advisory entries.
func (iss Issues) Warnings() Issues {
	var out Issues
	for _, it := range iss {
		if it.Severity == SeverityWarning {
			out = append(out, it)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
