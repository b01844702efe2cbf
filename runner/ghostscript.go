package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// DefaultConvertTimeout bounds one Ghostscript invocation. Conversions are
// cheap; anything longer indicates a hung interpreter.
const DefaultConvertTimeout = 30 * time.Second

// DefaultDPI is the raster resolution used when none is configured.
const DefaultDPI = 150

// deviceMap translates output formats to Ghostscript device names.
var deviceMap = map[string]string{
	"png": "png16m",
	"pdf": "pdfwrite",
	"jpg": "jpeg",
}

// Formats lists the supported conversion targets.
func Formats() []string { return []string{"png", "pdf", "jpg"} }

// GhostscriptCommand picks the platform binary name.
func GhostscriptCommand() string {
	if runtime.GOOS == "windows" {
		return "gswin64c"
	}
	return "gs"
}

// Converter turns EPS plots into raster or PDF files with Ghostscript.
type Converter struct {
	Command string        // Ghostscript binary, platform default when empty
	Format  string        // png, pdf or jpg; png when empty
	DPI     int           // raster resolution, DefaultDPI when zero
	Timeout time.Duration // per-file bound, DefaultConvertTimeout when zero
}

func (c *Converter) command() string {
	if c.Command != "" {
		return c.Command
	}
	return GhostscriptCommand()
}

func (c *Converter) format() string {
	if c.Format != "" {
		return c.Format
	}
	return "png"
}

func (c *Converter) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultConvertTimeout
}

func (c *Converter) dpi() int {
	if c.DPI > 0 {
		return c.DPI
	}
	return DefaultDPI
}

// Target maps an EPS path inside an eps/ directory to its converted
// sibling: .../BDM1_P2/eps/u.eps becomes .../BDM1_P2/png/u.png.
func Target(epsPath, format string) string {
	dir := filepath.Dir(epsPath)
	base := strings.TrimSuffix(filepath.Base(epsPath), filepath.Ext(epsPath))
	return filepath.Join(filepath.Dir(dir), format, base+"."+format)
}

// Convert renders one EPS file. Success requires both a zero exit status and
// the output file on disk.
func (c *Converter) Convert(ctx context.Context, epsPath string) Result {
	device, ok := deviceMap[c.format()]
	if !ok {
		return Result{Message: fmt.Sprintf("unsupported format %q", c.format())}
	}
	out := Target(epsPath, c.format())
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return Result{Message: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, c.command(),
		"-dSAFER", "-dBATCH", "-dNOPAUSE", "-dEPSCrop",
		"-sDEVICE="+device,
		fmt.Sprintf("-r%d", c.dpi()),
		"-sOutputFile="+out,
		epsPath,
	)
	diag, err := cmd.CombinedOutput()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Result{Message: fmt.Sprintf("TIMEOUT (%ds)", int(c.timeout().Seconds()))}
	}
	if errors.Is(err, exec.ErrNotFound) {
		return Result{Message: "ghostscript not found"}
	}
	if err != nil {
		msg := strings.TrimSpace(string(diag))
		if len(msg) > 100 {
			msg = msg[:100]
		}
		return Result{Message: fmt.Sprintf("conversion failed: %s", msg)}
	}
	if _, err := os.Stat(out); err != nil {
		return Result{Message: "conversion produced no output"}
	}
	return Result{OK: true}
}

// FindEPS walks root and returns every EPS file under an eps/ directory,
// sorted.
func FindEPS(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".eps") {
			return nil
		}
		if filepath.Base(filepath.Dir(path)) != "eps" {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
