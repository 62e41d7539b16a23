package bcf

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// EnumPolicy supplies permitted value sets for the open enum fields. The
// markup schema deliberately leaves these as unrestricted strings for
// producer extensibility, so the sets come from the caller, never from a
// hard-coded list. An empty set permits any value for that field.
type EnumPolicy struct {
	TopicTypes    []string `yaml:"topicTypes"`
	TopicStatuses []string `yaml:"topicStatuses"`
	Priorities    []string `yaml:"priorities"`
	Stages        []string `yaml:"stages"`
	Labels        []string `yaml:"labels"`
}

// LoadEnumPolicy reads a YAML policy document. Unknown keys are rejected so
// typos in policy files surface early.
func LoadEnumPolicy(r io.Reader) (*EnumPolicy, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var p EnumPolicy
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode enum policy: %w", err)
	}
	return &p, nil
}

// LoadEnumPolicyFile reads a YAML policy file from disk.
func LoadEnumPolicyFile(path string) (*EnumPolicy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open enum policy %s: %w", path, err)
	}
	defer f.Close()
	return LoadEnumPolicy(f)
}

func (p *EnumPolicy) allows(set []string, v string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
