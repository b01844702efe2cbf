// Package tasks expands the problem catalog into the flat list of
// independent generation tasks: one per (boundary condition, function,
// domain, finite-element space pairing) combination.
package tasks

import (
	"strings"

	"femgen/catalog"
)

// Descriptor identifies one solver-generation task. Name and FESpaceName
// together are unique across a composed list and double as the output path
// key {Name}/{FESpaceName}.
type Descriptor struct {
	Name              string
	FESpaceName       string
	BoundaryCondition string
	FunctionName      string
	Domain            string
	MixedFESpace      string
	LagrangeFESpace   string
}

// Path is the composed identifier used for output layout and filtering.
func (d Descriptor) Path() string { return d.Name + "/" + d.FESpaceName }

// abbreviations shortens function names inside task names. Functions not
// listed pass through unabbreviated.
var abbreviations = map[string]string{
	"Trigonometric":      "Trig",
	"Bercovier_Engelman": "BercEng",
}

func abbrev(fn string) string {
	if short, ok := abbreviations[fn]; ok {
		return short
	}
	return fn
}

// Compose walks the catalog in declaration order and emits every task:
// for each boundary-condition group, each function, each domain the function
// supports, each space pairing of the group. Output order is stable
// run-to-run because the catalog preserves declaration order.
func Compose(cat *catalog.Catalog) []Descriptor {
	var out []Descriptor
	for _, bc := range cat.BoundaryConditions() {
		pairs := cat.Spaces(bc)
		for _, fn := range cat.Functions(bc) {
			def, err := cat.Lookup(bc, fn, "")
			if err != nil {
				// Unreachable: names come from the catalog itself.
				continue
			}
			for _, domain := range def.Domains {
				for _, pair := range pairs {
					out = append(out, Descriptor{
						Name:              bc + "_" + abbrev(fn) + "_" + domain,
						FESpaceName:       pair.Mixed + "_" + pair.Lagrange,
						BoundaryCondition: bc,
						FunctionName:      fn,
						Domain:            domain,
						MixedFESpace:      pair.Mixed,
						LagrangeFESpace:   pair.Lagrange,
					})
				}
			}
		}
	}
	return out
}

// Filter keeps the descriptors whose {Name}/{FESpaceName} contains substr.
// This is deliberately plain substring matching, not a pattern language;
// run multiple filters for composite selections. An empty substr keeps
// everything; zero matches yield an empty slice, never an error.
func Filter(list []Descriptor, substr string) []Descriptor {
	if substr == "" {
		return list
	}
	out := make([]Descriptor, 0, len(list))
	for _, d := range list {
		if strings.Contains(d.Path(), substr) {
			out = append(out, d)
		}
	}
	return out
}
