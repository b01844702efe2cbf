package runner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestSolverRunRequiresResults(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a unix no-op binary")
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, SolverScript), "// empty\n")

	// "true" exits cleanly but writes nothing, so the run must fail.
	s := &Solver{Command: "true"}
	res := s.Run(context.Background(), dir)
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, ResultsFile)
}

func TestSolverRunRemovesStaleResults(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a unix no-op binary")
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, SolverScript), "// empty\n")
	writeFile(t, filepath.Join(dir, ResultsFile), "stale\n")

	s := &Solver{Command: "true"}
	res := s.Run(context.Background(), dir)
	assert.False(t, res.OK, "stale results must not count as success")
	_, err := os.Stat(filepath.Join(dir, ResultsFile))
	assert.True(t, os.IsNotExist(err))
}

func TestSolverRunMissingBinary(t *testing.T) {
	dir := t.TempDir()
	s := &Solver{Command: "definitely-not-a-solver-binary"}
	res := s.Run(context.Background(), dir)
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "not found")
}

func TestFindSolvers(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Dirichlet_Trig_Square", "BDM1_P2", SolverScript), "")
	writeFile(t, filepath.Join(root, "Magnetic_Trig_Square", "BDM2Ortho_P3", SolverScript), "")
	writeFile(t, filepath.Join(root, "Magnetic_Trig_Square", "BDM2Ortho_P3", "notes.txt"), "")

	dirs, err := FindSolvers(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("Dirichlet_Trig_Square", "BDM1_P2"),
		filepath.Join("Magnetic_Trig_Square", "BDM2Ortho_P3"),
	}, dirs)
}

func TestTarget(t *testing.T) {
	eps := filepath.Join("out", "Dirichlet_Trig_Square", "BDM1_P2", "eps", "u-level0.eps")
	assert.Equal(t,
		filepath.Join("out", "Dirichlet_Trig_Square", "BDM1_P2", "png", "u-level0.png"),
		Target(eps, "png"))
	assert.Equal(t,
		filepath.Join("out", "Dirichlet_Trig_Square", "BDM1_P2", "pdf", "u-level0.pdf"),
		Target(eps, "pdf"))
}

func TestConvertUnsupportedFormat(t *testing.T) {
	c := &Converter{Format: "bmp"}
	res := c.Convert(context.Background(), "whatever.eps")
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "unsupported format")
}

func TestConvertMissingBinary(t *testing.T) {
	root := t.TempDir()
	eps := filepath.Join(root, "BDM1_P2", "eps", "u.eps")
	writeFile(t, eps, "%!PS-Adobe-3.0 EPSF-3.0\n")

	c := &Converter{Command: "definitely-not-ghostscript"}
	res := c.Convert(context.Background(), eps)
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "not found")
}

func TestFindEPS(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "eps", "u.eps"), "")
	writeFile(t, filepath.Join(root, "a", "eps", "rot.eps"), "")
	writeFile(t, filepath.Join(root, "a", "png", "u.eps"), "")  // wrong parent dir
	writeFile(t, filepath.Join(root, "a", "eps", "README"), "") // wrong extension

	files, err := FindEPS(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a", "eps", "rot.eps"),
		filepath.Join(root, "a", "eps", "u.eps"),
	}, files)
}
