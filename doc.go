package bcf

// Package bcf provides:
//
// - Parsing of BCF Markup documents into a typed model (Parse/ParseWithWarnings)
// - A stable diagnostic model via Issues (path, code, message, severity)
// - Semantic validation with full error accumulation (Validate)
// - Deterministic serialization back to the wire format (Serialize/Write)
// - A Builder that enforces model invariants at insertion time
//
// Design policy:
// - The exported surface is small; the XML wire layer stays unexported.
// - The library core performs no I/O and no logging; the CLI lives under cmd/bcflint.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	m, err := bcf.Parse(data)
//	vm, err := bcf.Validate(m, bcf.ValidateOpt{Enums: policy})
//	out, err := bcf.Serialize(vm.Markup())
