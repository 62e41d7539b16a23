package bcf

import (
	json "github.com/goccy/go-json"
)

// JSON projections for tooling interchange. The same issue data BCF tools
// move over XML is commonly exchanged as JSON; these helpers expose the
// model and diagnostics in that form.

// JSON renders the markup model as JSON.
func (m *Markup) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// MarkupFromJSON decodes a JSON projection produced by Markup.JSON. The
// result is a plain model: run Validate before trusting it.
func MarkupFromJSON(data []byte) (*Markup, error) {
	var m Markup
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, Issues{{Code: CodeInvalidValue, Severity: SeverityError, Message: err.Error()}}
	}
	return &m, nil
}

// JSON renders the diagnostics list as JSON for machine consumption.
func (iss Issues) JSON() ([]byte, error) {
	return json.MarshalIndent(iss, "", "  ")
}
