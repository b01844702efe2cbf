// Package assemble turns one task plus its derived quantities into a single
// self-contained FreeFEM program. A main template defines the program
// structure; five include fragments (arrays, mesh, plot, errors, output) are
// rendered independently, have their banner headers stripped, and are then
// inlined at named placeholder lines in the main template.
//
// Placeholders are explicit "// @include <fragment>" lines resolved by exact
// lookup. A placeholder with no fragment, a fragment with no placeholder, or
// a placeholder appearing twice is an error; the silent-drop behaviour of
// pattern-matched inlining is deliberately not reproduced here.
package assemble

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"femgen/exact"
	"femgen/tasks"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	// ErrTemplateNotFound reports a request for a template that does not
	// exist in the embedded set.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrRender reports an unresolved parameter or a placeholder mismatch.
	ErrRender = errors.New("template render error")
)

// OutputFile is the fixed name of the assembled program.
const OutputFile = "solver.edp"

const mainTemplate = "solver.edp"

// fragments lists the include fragments in inlining order.
var fragments = []string{"arrays", "mesh", "plot", "errors", "output"}

// Params is the variable set every template is rendered against.
type Params struct {
	ProblemName       string
	BoundaryCondition string
	Domain            string
	MixedFESpace      string
	LagrangeFESpace   string
	Sol               exact.Solution
}

// NewParams binds a task descriptor and its derived quantities.
func NewParams(task tasks.Descriptor, sol exact.Solution) Params {
	return Params{
		ProblemName:       task.BoundaryCondition + "_" + task.FunctionName + "_" + task.Domain,
		BoundaryCondition: task.BoundaryCondition,
		Domain:            task.Domain,
		MixedFESpace:      task.MixedFESpace,
		LagrangeFESpace:   task.LagrangeFESpace,
		Sol:               sol,
	}
}

// Assemble renders the main template and all fragments for one task and
// returns the complete program keyed by its output filename. Nothing is
// written to disk here; the caller persists the result only after assembly
// has fully succeeded.
func Assemble(task tasks.Descriptor, sol exact.Solution) (map[string]string, error) {
	p := NewParams(task, sol)

	main, err := Render(mainTemplate, p)
	if err != nil {
		return nil, err
	}
	for _, frag := range fragments {
		body, err := Render(frag+".idp", p)
		if err != nil {
			return nil, err
		}
		main, err = inline(main, frag, StripHeader(body))
		if err != nil {
			return nil, err
		}
	}
	if strings.Contains(main, "@include") {
		return nil, fmt.Errorf("%w: unresolved placeholder in assembled program", ErrRender)
	}
	return map[string]string{OutputFile: main}, nil
}

// Render loads one named template from the embedded set and executes it
// against the parameters. Unknown names fail with ErrTemplateNotFound,
// unresolved parameters with ErrRender.
func Render(name string, p Params) (string, error) {
	raw, err := templateFS.ReadFile("templates/" + name + ".tmpl")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRender, name, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, p); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRender, name, err)
	}
	return sb.String(), nil
}

// StripHeader removes the leading banner of a rendered fragment: every
// initial line that is blank, a // comment, or a pure separator run of '='
// characters. The first substantive line onward is kept, terminated by
// exactly one newline.
func StripHeader(content string) string {
	lines := strings.Split(content, "\n")
	start := len(lines)
	for i, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "//") || s == strings.Repeat("=", len(s)) {
			continue
		}
		start = i
		break
	}
	return strings.TrimRight(strings.Join(lines[start:], "\n"), "\n") + "\n"
}

// inline replaces the single "// @include name" line with the fragment body,
// re-indenting the body by the placeholder's leading whitespace.
func inline(main, name, body string) (string, error) {
	marker := "// @include " + name
	lines := strings.Split(main, "\n")
	hits := 0
	var out []string
	for _, line := range lines {
		if strings.TrimSpace(line) != marker {
			out = append(out, line)
			continue
		}
		hits++
		if hits > 1 {
			return "", fmt.Errorf("%w: duplicate placeholder for fragment %q", ErrRender, name)
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		for _, bl := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
			if bl == "" {
				out = append(out, "")
				continue
			}
			out = append(out, indent+bl)
		}
	}
	if hits == 0 {
		return "", fmt.Errorf("%w: fragment %q has no placeholder in the main template", ErrRender, name)
	}
	return strings.Join(out, "\n"), nil
}
