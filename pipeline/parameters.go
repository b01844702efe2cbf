package pipeline

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML config file and the command line.
type Parameters struct {
	Output       string `yaml:"Output"`       // root of the generated tree
	Filter       string `yaml:"Filter"`       // substring over {name}/{fespace}
	Parallel     int    `yaml:"Parallel"`     // concurrent workers per stage
	DPI          int    `yaml:"DPI"`          // raster resolution for convert
	Format       string `yaml:"Format"`       // png, pdf or jpg
	Strict       bool   `yaml:"Strict"`       // abort on convert failures too
	SolveTimeout int    `yaml:"SolveTimeout"` // seconds per FreeFem++ run
	CatalogFile  string `yaml:"CatalogFile"`  // optional problem overlay
}

// Defaults returns the parameter set used when nothing is configured.
func Defaults() Parameters {
	return Parameters{
		Output:       "output",
		Parallel:     4,
		DPI:          150,
		Format:       "png",
		SolveTimeout: 600,
	}
}

func (p *Parameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, p)
}

func (p *Parameters) Print() {
	fmt.Printf("[%s]\t\t= Output\n", p.Output)
	if p.Filter != "" {
		fmt.Printf("[%s]\t\t= Filter\n", p.Filter)
	}
	fmt.Printf("[%d]\t\t\t= Parallel\n", p.Parallel)
	fmt.Printf("[%d]\t\t\t= DPI\n", p.DPI)
	fmt.Printf("[%s]\t\t\t= Format\n", p.Format)
	fmt.Printf("[%v]\t\t\t= Strict\n", p.Strict)
	fmt.Printf("[%d]\t\t\t= SolveTimeout (s)\n", p.SolveTimeout)
	if p.CatalogFile != "" {
		fmt.Printf("[%s]\t= CatalogFile\n", p.CatalogFile)
	}
}
