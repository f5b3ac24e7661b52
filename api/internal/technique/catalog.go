// Package technique holds the fixed catalog of creative-thinking techniques.
//
// The catalog is parsed once from the embedded catalog.yaml and is read-only
// afterwards; callers only get copies through the accessor functions.
package technique

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ID identifies a technique, e.g. "SCAMPER".
type ID string

type Descriptor struct {
	ID          ID     `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Icon        string `yaml:"icon" json:"icon"`
}

// Example is one of the pre-filled problem statements offered to users.
type Example struct {
	ID   int    `yaml:"id" json:"id"`
	Text string `yaml:"text" json:"text"`
}

type catalogFile struct {
	Default    ID           `yaml:"default"`
	Techniques []Descriptor `yaml:"techniques"`
	Examples   []Example    `yaml:"examples"`
}

type catalog struct {
	ordered  []Descriptor
	byID     map[ID]int
	def      Descriptor
	examples []Example
}

//go:embed catalog.yaml
var catalogYAML []byte

var builtin = mustParse(catalogYAML)

func mustParse(raw []byte) *catalog {
	c, err := parse(raw)
	if err != nil {
		panic(fmt.Sprintf("technique: bad embedded catalog: %v", err))
	}
	return c
}

func parse(raw []byte) (*catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	if len(f.Techniques) == 0 {
		return nil, fmt.Errorf("no techniques")
	}
	c := &catalog{
		ordered:  f.Techniques,
		byID:     make(map[ID]int, len(f.Techniques)),
		examples: f.Examples,
	}
	for i, d := range f.Techniques {
		if d.ID == "" || strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.Description) == "" || d.Icon == "" {
			return nil, fmt.Errorf("technique #%d (%q) is incomplete", i, d.ID)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate technique %q", d.ID)
		}
		c.byID[d.ID] = i
	}
	i, ok := c.byID[f.Default]
	if !ok {
		return nil, fmt.Errorf("default technique %q is not in the catalog", f.Default)
	}
	c.def = c.ordered[i]
	return c, nil
}

// All returns every technique in catalog order.
func All() []Descriptor {
	out := make([]Descriptor, len(builtin.ordered))
	copy(out, builtin.ordered)
	return out
}

// Lookup reports whether id names a catalog entry.
func Lookup(id ID) (Descriptor, bool) {
	i, ok := builtin.byID[id]
	if !ok {
		return Descriptor{}, false
	}
	return builtin.ordered[i], true
}

// Resolve never fails: unknown ids map to Default().
func Resolve(id ID) Descriptor {
	if d, ok := Lookup(id); ok {
		return d
	}
	return builtin.def
}

func Default() Descriptor { return builtin.def }

// Search filters the catalog by a case-insensitive substring of the name or
// the description. An empty term matches everything.
func Search(term string) []Descriptor {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return All()
	}
	var out []Descriptor
	for _, d := range builtin.ordered {
		if strings.Contains(strings.ToLower(d.Name), term) ||
			strings.Contains(strings.ToLower(d.Description), term) ||
			strings.Contains(strings.ToLower(string(d.ID)), term) {
			out = append(out, d)
		}
	}
	return out
}

func Examples() []Example {
	out := make([]Example, len(builtin.examples))
	copy(out, builtin.examples)
	return out
}

// ExampleByID returns the pre-filled prompt with the given id.
func ExampleByID(id int) (Example, bool) {
	for _, e := range builtin.examples {
		if e.ID == id {
			return e, true
		}
	}
	return Example{}, false
}

// UsePrefix is the text put in the input box when a user picks a technique
// from the listing; they complete the problem after it.
func UsePrefix(d Descriptor) string {
	return "باستخدام " + d.Name + ": "
}
