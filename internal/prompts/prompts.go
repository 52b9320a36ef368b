// Package prompts holds the prompt templates sent to the language models.
package prompts

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Prompt names
const (
	KundliAnalysis = "kundli_analysis"
	KundliReport   = "kundli_report"
	Compatibility  = "compatibility"
	KundliScan     = "kundli_scan"
	Panchang       = "panchang"
	AstroBot       = "astrobot"
)

//go:embed prompts.yaml
var catalogue []byte

// Prompt is a system and user template pair.
type Prompt struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// Catalogue holds parsed prompt templates.
type Catalogue struct {
	system map[string]*template.Template
	user   map[string]*template.Template
}

// Load parses the embedded catalogue.
func Load() (*Catalogue, error) {
	return Parse(catalogue)
}

// Parse reads a YAML prompt catalogue.
func Parse(data []byte) (*Catalogue, error) {
	raw := map[string]Prompt{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse prompt catalogue: %w", err)
	}
	c := &Catalogue{
		system: make(map[string]*template.Template, len(raw)),
		user:   make(map[string]*template.Template, len(raw)),
	}
	for name, p := range raw {
		var err error
		if c.system[name], err = template.New(name + ".system").Option("missingkey=zero").Parse(p.System); err != nil {
			return nil, fmt.Errorf("prompt %s: %w", name, err)
		}
		if c.user[name], err = template.New(name + ".user").Option("missingkey=zero").Parse(p.User); err != nil {
			return nil, fmt.Errorf("prompt %s: %w", name, err)
		}
	}
	return c, nil
}

// Render fills the named prompt with data, returning the system and user text.
func (c *Catalogue) Render(name string, data any) (system, user string, err error) {
	st, ok := c.system[name]
	if !ok {
		return "", "", fmt.Errorf("unknown prompt %q", name)
	}
	var sb, ub strings.Builder
	if err := st.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("prompt %s: %w", name, err)
	}
	if err := c.user[name].Execute(&ub, data); err != nil {
		return "", "", fmt.Errorf("prompt %s: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), strings.TrimSpace(ub.String()), nil
}

// MustLoad is Load for program start-up.
func MustLoad() *Catalogue {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}
