// Package catalog is the declarative registry of benchmark problems: for
// each boundary-condition group, the named test functions with their exact
// solutions and valid domains, plus the finite-element space pairings
// admissible for that group. The registry is built once at startup and is
// read-only afterwards; all variability lives in data, not in types.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

var (
	// ErrNotFound reports an unknown boundary condition or function name.
	ErrNotFound = errors.New("catalog entry not found")
	// ErrInvalidDomain reports a domain the requested function is not
	// defined on.
	ErrInvalidDomain = errors.New("invalid domain")
)

// Definition is one test function: the exact solution components in FreeFEM
// expression syntax and the domains the function is valid on. Domains is
// never empty for a registered definition.
type Definition struct {
	Description string   `json:"description"`
	Domains     []string `json:"domain"`
	U1          string   `json:"u1"`
	U2          string   `json:"u2"`
}

// FESpacePair couples a vector-valued mixed space with the scalar Lagrange
// space it is used alongside. Pairings are registered per boundary-condition
// group, not per function.
type FESpacePair struct {
	Mixed    string `json:"mixed"`
	Lagrange string `json:"lagrange"`
}

type group struct {
	fnOrder []string
	fns     map[string]Definition
}

// Catalog is the immutable problem registry. Construct with Default (and
// optionally MergeYAML) before any tasks are composed, then share freely:
// lookups never mutate state and always return copies.
type Catalog struct {
	bcOrder []string
	groups  map[string]*group
	spaces  map[string][]FESpacePair
}

// Default returns the built-in problem registry.
func Default() *Catalog {
	c := &Catalog{
		groups: map[string]*group{},
		spaces: map[string][]FESpacePair{},
	}

	// Dirichlet boundary condition (u = 0 on the boundary)
	c.add("Dirichlet", "Trigonometric", Definition{
		Description: "Trigonometric product",
		Domains:     []string{"Square", "Lshaped"},
		U1:          "sin(pi*x)*sin(pi*y)",
		U2:          "sin(pi*x)*sin(pi*y)",
	})
	c.add("Dirichlet", "Bercovier_Engelman", Definition{
		Description: "Bercovier-Engelman polynomial",
		Domains:     []string{"Square"},
		U1:          "-256*y*(y-1)*(2*y-1)*x^2*(x-1)^2",
		U2:          "256*x*(x-1)*(2*x-1)*y^2*(y-1)^2",
	})
	c.add("Dirichlet", "Ruas", Definition{
		Description: "Ruas rotational field",
		Domains:     []string{"Circle"},
		U1:          "y*(x^2+y^2-1)",
		U2:          "-x*(x^2+y^2-1)",
	})

	// Electric boundary condition (u·t = 0, div u = 0 on the boundary)
	c.add("Electric", "Trigonometric", Definition{
		Description: "Trigonometric product",
		Domains:     []string{"Square", "Lshaped"},
		U1:          "sin(pi*y)*cos(pi*x)",
		U2:          "2*sin(pi*x)*cos(pi*y)",
	})

	// Magnetic boundary condition (u·n = 0, rot u = 0 on the boundary)
	c.add("Magnetic", "Trigonometric", Definition{
		Description: "Trigonometric product",
		Domains:     []string{"Square", "Lshaped"},
		U1:          "sin(pi*x)*cos(pi*y)",
		U2:          "2*sin(pi*y)*cos(pi*x)",
	})

	c.spaces["Dirichlet"] = []FESpacePair{
		{"BDM1", "P2"},
		{"BDM2", "P3"},
	}
	c.spaces["Electric"] = []FESpacePair{
		{"BDM1", "P2"},
		{"BDM2", "P3"},
		{"BDM1Ortho", "P2"},
		{"BDM2Ortho", "P3"},
	}
	c.spaces["Magnetic"] = []FESpacePair{
		{"BDM1", "P2"},
		{"BDM2", "P3"},
		{"BDM1Ortho", "P2"},
		{"BDM2Ortho", "P3"},
	}

	return c
}

func (c *Catalog) add(bc, name string, def Definition) {
	g, ok := c.groups[bc]
	if !ok {
		g = &group{fns: map[string]Definition{}}
		c.groups[bc] = g
		c.bcOrder = append(c.bcOrder, bc)
	}
	if _, dup := g.fns[name]; !dup {
		g.fnOrder = append(g.fnOrder, name)
	}
	g.fns[name] = def
}

// BoundaryConditions returns the group names in declaration order.
func (c *Catalog) BoundaryConditions() []string {
	return append([]string(nil), c.bcOrder...)
}

// Functions returns the function names of a group in declaration order.
func (c *Catalog) Functions(bc string) []string {
	g, ok := c.groups[bc]
	if !ok {
		return nil
	}
	return append([]string(nil), g.fnOrder...)
}

// Spaces returns the finite-element space pairings registered for a group.
func (c *Catalog) Spaces(bc string) []FESpacePair {
	return append([]FESpacePair(nil), c.spaces[bc]...)
}

// Lookup fetches one definition. An empty domain skips domain validation;
// otherwise the domain must be among the definition's valid domains. The
// returned Definition is a copy, so callers cannot mutate registry state.
func (c *Catalog) Lookup(bc, fn, domain string) (Definition, error) {
	g, ok := c.groups[bc]
	if !ok {
		return Definition{}, fmt.Errorf("%w: boundary condition %q", ErrNotFound, bc)
	}
	def, ok := g.fns[fn]
	if !ok {
		return Definition{}, fmt.Errorf("%w: function %q under %q", ErrNotFound, fn, bc)
	}
	if domain != "" && !contains(def.Domains, domain) {
		return Definition{}, fmt.Errorf(
			"%w: function %q does not support domain %q (supported: %v)",
			ErrInvalidDomain, fn, domain, def.Domains)
	}
	def.Domains = append([]string(nil), def.Domains...)
	return def, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// MergeYAML overlays additional catalog entries from a YAML document of the
// shape {boundary_condition: {function_name: definition}}. New groups and
// functions are appended after the built-ins in sorted order (YAML mappings
// carry no order) so composition stays deterministic. A group introduced by
// the overlay starts with no space pairings; declare them in code.
func (c *Catalog) MergeYAML(data []byte) error {
	var overlay map[string]map[string]Definition
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("catalog overlay: %w", err)
	}
	bcs := make([]string, 0, len(overlay))
	for bc := range overlay {
		bcs = append(bcs, bc)
	}
	sort.Strings(bcs)
	for _, bc := range bcs {
		fns := make([]string, 0, len(overlay[bc]))
		for fn := range overlay[bc] {
			fns = append(fns, fn)
		}
		sort.Strings(fns)
		for _, fn := range fns {
			def := overlay[bc][fn]
			if len(def.Domains) == 0 {
				return fmt.Errorf("catalog overlay: %s/%s has no domains", bc, fn)
			}
			if def.U1 == "" || def.U2 == "" {
				return fmt.Errorf("catalog overlay: %s/%s is missing u1 or u2", bc, fn)
			}
			c.add(bc, fn, def)
		}
	}
	return nil
}
