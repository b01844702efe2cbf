package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// ResultsFile is the convergence table a solver run must produce. Its
// presence after the run, not the process exit code, decides success.
const ResultsFile = "results.dat"

// SolverScript is the program filename every solver directory contains.
const SolverScript = "solver.edp"

// DefaultSolveTimeout bounds one FreeFem++ invocation.
const DefaultSolveTimeout = 600 * time.Second

// Solver runs FreeFem++ on assembled solver directories.
type Solver struct {
	Command string        // solver binary, "FreeFem++" when empty
	Timeout time.Duration // per-run bound, DefaultSolveTimeout when zero
}

func (s *Solver) command() string {
	if s.Command != "" {
		return s.Command
	}
	return "FreeFem++"
}

func (s *Solver) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultSolveTimeout
}

// Run executes the solver script in dir. A stale results file is removed
// first so success always reflects this run. FreeFem++ writes its plots
// relative to the working directory, hence cmd.Dir.
func (s *Solver) Run(ctx context.Context, dir string) Result {
	results := filepath.Join(dir, ResultsFile)
	if err := os.Remove(results); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Result{Message: fmt.Sprintf("cannot remove stale %s: %v", ResultsFile, err)}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, s.command(), "-nw", SolverScript)
	cmd.Dir = dir
	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Result{Message: fmt.Sprintf("TIMEOUT (%ds)", int(s.timeout().Seconds()))}
	}
	if errors.Is(err, exec.ErrNotFound) {
		return Result{Message: fmt.Sprintf("%s not found", s.command())}
	}

	// A solver that crashed mid-run may still have exited nonzero after
	// writing results; the artifact is the arbiter.
	if _, statErr := os.Stat(results); statErr != nil {
		if err != nil {
			return Result{Message: fmt.Sprintf("no %s generated: %v", ResultsFile, err)}
		}
		return Result{Message: fmt.Sprintf("no %s generated", ResultsFile)}
	}
	return Result{OK: true}
}

// FindSolvers walks root and returns the directories containing a solver
// script, as sorted paths relative to root.
func FindSolvers(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != SolverScript {
			return nil
		}
		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		dirs = append(dirs, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}
