package bcf

// UnknownPolicy controls how elements and attributes not declared by the
// markup schema are handled. BCF producers are known to add vendor
// extensions, so the default is lenient.
type UnknownPolicy int

const (
	UnknownLenient UnknownPolicy = iota // Record undeclared nodes as warnings and skip them.
	UnknownStrict                       // Reject undeclared nodes with an error.
)

// ParseOpt bundles structural parsing options.
type ParseOpt struct {
	Unknown  UnknownPolicy
	FailFast bool  // Stop at the first structural error.
	MaxBytes int64 // Reject inputs larger than this when > 0.
}

// ValidateOpt bundles semantic validation options.
type ValidateOpt struct {
	// Enums optionally supplies permitted value sets for the open enum
	// fields (TopicType, TopicStatus, Priority, Stage, Labels). Nil
	// disables enum plausibility checks entirely.
	Enums *EnumPolicy
	// StrictEnums escalates enum mismatches from warnings to hard errors.
	StrictEnums bool
}

func lastParseOpt(opts []ParseOpt) ParseOpt {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return ParseOpt{}
}

func lastValidateOpt(opts []ValidateOpt) ValidateOpt {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return ValidateOpt{}
}
