// Package programs holds the Express Entry program and category catalogue.
//
// Codes are an open set loaded from YAML. Every lookup has a fallback arm so
// an unknown label or code never fails.
package programs

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// Code identifies a program or category field on a month bucket
type Code string

// Class splits codes into program-coded, category-coded and the fallback
type Class string

const (
	ClassProgram  Class = "program"
	ClassCategory Class = "category"
	ClassFallback Class = "fallback"
)

// Well-known codes shipped in the default catalogue
const (
	CEC           Code = "cec"
	PNP           Code = "pnp"
	FSW           Code = "fsw"
	FST           Code = "fst"
	French        Code = "french"
	Healthcare    Code = "healthcare"
	STEM          Code = "stem"
	Trade         Code = "trade"
	Education     Code = "education"
	Agriculture   Code = "agriculture"
	Uncategorized Code = "uncategorized"
)

// Entry describes one code
type Entry struct {
	Code        Code     `yaml:"code"`
	Class       Class    `yaml:"class"`
	Name        string   `yaml:"name"`
	Short       string   `yaml:"short"`
	SourceCodes []string `yaml:"source_codes"`
}

type rule struct {
	Label string `yaml:"label"`
	Code  Code   `yaml:"code"`
}

type document struct {
	Codes []Entry `yaml:"codes"`
	Match []rule  `yaml:"match"`
}

// Catalogue resolves labels to codes and codes to classes
type Catalogue struct {
	entries  []Entry
	byCode   map[Code]Entry
	bySource map[string]Code
	rules    []rule
	fallback Code
}

// fold builds a fresh Caser per call; Casers are stateful and not goroutine safe
func fold(s string) string { return cases.Fold().String(strings.TrimSpace(s)) }

//go:embed catalogue.yaml
var defaultYAML []byte

var def = mustParse(defaultYAML)

func mustParse(b []byte) *Catalogue {
	c, err := Parse(b)
	if err != nil {
		panic(fmt.Sprintf("programs: embedded catalogue: %v", err))
	}
	return c
}

// Default returns the embedded catalogue
func Default() *Catalogue { return def }

// Parse builds a Catalogue from YAML
func Parse(b []byte) (*Catalogue, error) {
	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}

	c := &Catalogue{
		byCode:   make(map[Code]Entry, len(doc.Codes)),
		bySource: make(map[string]Code),
	}
	for _, e := range doc.Codes {
		if e.Code == "" {
			return nil, fmt.Errorf("catalogue entry %q has no code", e.Name)
		}
		if _, dup := c.byCode[e.Code]; dup {
			return nil, fmt.Errorf("duplicate code %q", e.Code)
		}
		switch e.Class {
		case ClassProgram, ClassCategory:
		case ClassFallback:
			if c.fallback != "" {
				return nil, fmt.Errorf("second fallback code %q (already %q)", e.Code, c.fallback)
			}
			c.fallback = e.Code
		default:
			return nil, fmt.Errorf("code %q has unknown class %q", e.Code, e.Class)
		}
		c.entries = append(c.entries, e)
		c.byCode[e.Code] = e
		for _, s := range e.SourceCodes {
			c.bySource[fold(s)] = e.Code
		}
	}
	if c.fallback == "" {
		return nil, fmt.Errorf("catalogue has no fallback code")
	}
	for _, r := range doc.Match {
		if _, ok := c.byCode[r.Code]; !ok {
			return nil, fmt.Errorf("match rule %q points at unknown code %q", r.Label, r.Code)
		}
		c.rules = append(c.rules, rule{Label: fold(r.Label), Code: r.Code})
	}
	return c, nil
}

// Match maps a free-text label to a code: exact source code first, then the
// ordered substring rules, then the fallback
func (c *Catalogue) Match(label string) Code {
	l := fold(label)
	if l == "" {
		return c.fallback
	}
	if code, ok := c.bySource[l]; ok {
		return code
	}
	if _, ok := c.byCode[Code(l)]; ok {
		return Code(l)
	}
	for _, r := range c.rules {
		if strings.Contains(l, r.Label) {
			return r.Code
		}
	}
	return c.fallback
}

// Resolve returns code when it is known, otherwise the fallback
func (c *Catalogue) Resolve(code Code) Code {
	if _, ok := c.byCode[code]; ok {
		return code
	}
	return c.fallback
}

// ClassOf returns the class of code; unknown codes are fallback
func (c *Catalogue) ClassOf(code Code) Class {
	if e, ok := c.byCode[code]; ok {
		return e.Class
	}
	return ClassFallback
}

// Fallback returns the fallback code
func (c *Catalogue) Fallback() Code { return c.fallback }

// Lookup returns the entry for code
func (c *Catalogue) Lookup(code Code) (Entry, bool) {
	e, ok := c.byCode[code]
	return e, ok
}

// Codes returns codes of the given class in catalogue order
func (c *Catalogue) Codes(class Class) []Code {
	var out []Code
	for _, e := range c.entries {
		if e.Class == class {
			out = append(out, e.Code)
		}
	}
	return out
}

// Entries returns a copy of all entries in catalogue order
func (c *Catalogue) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}
