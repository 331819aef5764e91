package chainflow

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// yamlDocument mirrors the chain document layout:
//
//	rule-chains:
//	  - id: "credit-scoring"
//	    pattern: "accumulative-chaining"
//	    configuration:
//	      accumulator-variable: "totalScore"
//	      ...
type yamlDocument struct {
	RuleChains []yamlChain `yaml:"rule-chains"`
}

type yamlChain struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name"`
	Pattern       string         `yaml:"pattern"`
	Enabled       *bool          `yaml:"enabled"`
	Configuration map[string]any `yaml:"configuration"`
}

// ParseChains parses a YAML chain document into chain definitions.
//
// A malformed document is a parse error. A chain whose configuration
// payload does not decode for its pattern is not: the definition is
// returned with the raw payload attached, and the dispatcher reports
// the decode failure as an unsuccessful result when the chain runs.
// Chains default to enabled.
func ParseChains(data []byte) ([]*ChainDefinition, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing chain document")
	}

	chains := make([]*ChainDefinition, 0, len(doc.RuleChains))
	for _, yc := range doc.RuleChains {
		cd := &ChainDefinition{
			ID:        yc.ID,
			Name:      yc.Name,
			Pattern:   Pattern(yc.Pattern),
			Enabled:   yc.Enabled == nil || *yc.Enabled,
			RawConfig: yc.Configuration,
		}
		if cd.Name == "" {
			cd.Name = cd.ID
		}
		if cfg, err := DecodeConfig(cd.Pattern, yc.Configuration); err == nil {
			cd.Config = cfg
		}
		chains = append(chains, cd)
	}
	return chains, nil
}

// ReadChains reads and parses a YAML chain document from r.
func ReadChains(r io.Reader) ([]*ChainDefinition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading chain document")
	}
	return ParseChains(data)
}
