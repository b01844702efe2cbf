// Package pipeline chains the three stages of the solver workflow:
// generate assembles FreeFEM programs from the problem catalog, solve runs
// FreeFem++ over every assembled program, convert rasterizes the EPS plots.
// Each stage is independently callable; Run executes them in order up to a
// chosen step.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"femgen/assemble"
	"femgen/catalog"
	"femgen/exact"
	"femgen/runner"
	"femgen/tasks"
)

// Steps lists the pipeline stages in execution order.
var Steps = []string{"generate", "solve", "convert"}

// StepIndex resolves a stage name to its position, or an error for unknown
// names.
func StepIndex(step string) (int, error) {
	for i, s := range Steps {
		if s == step {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown step %q (want one of %v)", step, Steps)
}

func banner(title string) {
	line := strings.Repeat("=", 60)
	fmt.Printf("\n%s\n%s\n%s\n", line, title, line)
}

// LoadCatalog builds the problem catalog, applying the overlay file from the
// parameters when one is configured.
func LoadCatalog(p Parameters) (*catalog.Catalog, error) {
	cat := catalog.Default()
	if p.CatalogFile == "" {
		return cat, nil
	}
	data, err := os.ReadFile(p.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("catalog overlay: %w", err)
	}
	if err := cat.MergeYAML(data); err != nil {
		return nil, err
	}
	return cat, nil
}

// Generate assembles one solver program per catalog task and lays it out as
// {output}/{name}/{fespace}/solver.edp with empty eps/ and image directories
// beside it. Files reach disk only after the whole program assembled
// cleanly. A failed task never blocks the others; the stage errors if any
// task failed.
func Generate(ctx context.Context, p Parameters, cat *catalog.Catalog) error {
	all := tasks.Compose(cat)
	list := tasks.Filter(all, p.Filter)
	if p.Filter != "" {
		fmt.Printf("Filter: %q -> %d/%d tasks\n", p.Filter, len(list), len(all))
	}

	banner(fmt.Sprintf("Generating %d solver scripts, %d workers", len(list), p.Parallel))
	worker := func(ctx context.Context, task tasks.Descriptor) runner.Result {
		return generateOne(p.Output, cat, task, p.Format)
	}
	success, fail, _ := runner.Map(ctx, list, worker, p.Parallel, tasks.Descriptor.Path)

	banner(fmt.Sprintf("Generated: %d succeeded, %d failed", success, fail))
	if fail > 0 {
		return fmt.Errorf("generate: %d of %d tasks failed", fail, len(list))
	}
	return nil
}

func generateOne(output string, cat *catalog.Catalog, task tasks.Descriptor, format string) runner.Result {
	def, err := cat.Lookup(task.BoundaryCondition, task.FunctionName, task.Domain)
	if err != nil {
		return runner.Result{Message: err.Error()}
	}
	sol, err := exact.Derive(def.U1, def.U2)
	if err != nil {
		return runner.Result{Message: err.Error()}
	}
	files, err := assemble.Assemble(task, sol)
	if err != nil {
		return runner.Result{Message: err.Error()}
	}

	dir := filepath.Join(output, task.Name, task.FESpaceName)
	for _, sub := range []string{"eps", format} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return runner.Result{Message: err.Error()}
		}
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			return runner.Result{Message: err.Error()}
		}
	}
	return runner.Result{OK: true}
}

// Solve runs FreeFem++ in every solver directory under the output root,
// subject to the same substring filter as generation. Finding no solvers at
// all is an error; individual solver failures are collected and reported at
// the end.
func Solve(ctx context.Context, p Parameters) error {
	if _, err := os.Stat(p.Output); err != nil {
		return fmt.Errorf("output directory %q does not exist, generate first", p.Output)
	}
	dirs, err := runner.FindSolvers(p.Output)
	if err != nil {
		return err
	}
	if p.Filter != "" {
		var kept []string
		for _, d := range dirs {
			if strings.Contains(filepath.ToSlash(d), p.Filter) {
				kept = append(kept, d)
			}
		}
		fmt.Printf("Filter: %q -> %d/%d solvers\n", p.Filter, len(kept), len(dirs))
		dirs = kept
	}
	if len(dirs) == 0 {
		return fmt.Errorf("no solvers found in %q", p.Output)
	}

	banner(fmt.Sprintf("Solving %d programs, %d workers", len(dirs), p.Parallel))
	solver := &runner.Solver{Timeout: time.Duration(p.SolveTimeout) * time.Second}
	worker := func(ctx context.Context, dir string) runner.Result {
		return solver.Run(ctx, filepath.Join(p.Output, dir))
	}
	success, fail, failed := runner.Map(ctx, dirs, worker, p.Parallel, filepath.ToSlash)

	banner(fmt.Sprintf("Summary: %d/%d succeeded", success, len(dirs)))
	if fail > 0 {
		fmt.Printf("\nFailed solvers (%d):\n", fail)
		for _, d := range failed {
			fmt.Printf("  - %s\n", filepath.ToSlash(d))
		}
		return fmt.Errorf("solve: %d of %d solvers failed", fail, len(dirs))
	}
	return nil
}

// Convert rasterizes every EPS plot under the output root. An empty tree is
// not an error, it just means nothing was plotted yet. Conversion failures
// only fail the stage in strict mode.
func Convert(ctx context.Context, p Parameters) error {
	files, err := runner.FindEPS(p.Output)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No EPS files found, skipping conversion")
		return nil
	}

	banner(fmt.Sprintf("Converting %d EPS files to %s at %d DPI, %d workers",
		len(files), strings.ToUpper(p.Format), p.DPI, p.Parallel))
	conv := &runner.Converter{Format: p.Format, DPI: p.DPI}
	worker := func(ctx context.Context, eps string) runner.Result {
		return conv.Convert(ctx, eps)
	}
	success, fail, _ := runner.Map(ctx, files, worker, p.Parallel, filepath.Base)

	banner(fmt.Sprintf("Converted: %d succeeded, %d failed", success, fail))
	if fail > 0 && p.Strict {
		return fmt.Errorf("convert: %d of %d files failed", fail, len(files))
	}
	if fail > 0 {
		fmt.Println("(continuing despite convert failures)")
	}
	return nil
}

// Run executes the stages in order, stopping after the named step. Generate
// and solve failures abort the pipeline; convert failures abort only in
// strict mode, inside Convert itself.
func Run(ctx context.Context, p Parameters, step string) error {
	last, err := StepIndex(step)
	if err != nil {
		return err
	}

	start := time.Now()
	cat, err := LoadCatalog(p)
	if err != nil {
		return err
	}

	fmt.Printf("Steps: generate -> solve -> convert (until: %s)\n", step)
	if err := Generate(ctx, p, cat); err != nil {
		return err
	}
	if last >= 1 {
		if err := Solve(ctx, p); err != nil {
			return err
		}
	}
	if last >= 2 {
		if err := Convert(ctx, p); err != nil {
			return err
		}
	}

	banner(fmt.Sprintf("Pipeline completed in %.1fs", time.Since(start).Seconds()))
	fmt.Printf("\nResults in: %s/\n", p.Output)
	return nil
}
