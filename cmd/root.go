/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"femgen/pipeline"
)

var cfgFile string

// rootCmd runs the full pipeline; the generate, solve and convert
// subcommands run one stage each.
var rootCmd = &cobra.Command{
	Use:   "femgen",
	Short: "Generate, solve and plot FreeFEM mixed finite element benchmarks",
	Long: `femgen compiles a catalog of vector Laplacian benchmark problems into
self-contained FreeFEM++ solver scripts, runs FreeFem++ over them in
parallel, and converts the resulting EPS plots with Ghostscript.

Without a subcommand the whole pipeline runs: generate -> solve -> convert.
Use --step to stop earlier, or the subcommands to run one stage.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadParameters(cmd)
		if err != nil {
			return err
		}
		step, _ := cmd.Flags().GetString("step")
		p.Print()
		return pipeline.Run(signalContext(), p, step)
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.femgen.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "output", "output directory")
	rootCmd.PersistentFlags().StringP("filter", "f", "",
		"substring filter over {name}/{fespace} task paths")
	rootCmd.PersistentFlags().IntP("parallel", "p", 4, "number of parallel workers")
	rootCmd.PersistentFlags().Int("dpi", 150, "image resolution for conversion")
	rootCmd.PersistentFlags().String("format", "png", "image format: png, pdf or jpg")
	rootCmd.PersistentFlags().Bool("strict", false, "abort on conversion failures too")
	rootCmd.PersistentFlags().Int("solve-timeout", 600, "per-solver timeout in seconds")
	rootCmd.PersistentFlags().String("catalog", "", "YAML overlay with additional problems")

	rootCmd.Flags().String("step", "convert",
		"run the pipeline up to this step: generate, solve or convert")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		// Search config in home directory with name ".femgen" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".femgen")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// loadParameters layers defaults, the discovered config file, and any flags
// the user set explicitly, in that order.
func loadParameters(cmd *cobra.Command) (pipeline.Parameters, error) {
	p := pipeline.Defaults()
	if cfg := viper.ConfigFileUsed(); cfg != "" {
		data, err := os.ReadFile(cfg)
		if err != nil {
			return p, err
		}
		if err := p.Parse(data); err != nil {
			return p, fmt.Errorf("config %s: %w", cfg, err)
		}
	}

	f := cmd.Flags()
	if f.Changed("output") {
		p.Output, _ = f.GetString("output")
	}
	if f.Changed("filter") {
		p.Filter, _ = f.GetString("filter")
	}
	if f.Changed("parallel") {
		p.Parallel, _ = f.GetInt("parallel")
	}
	if f.Changed("dpi") {
		p.DPI, _ = f.GetInt("dpi")
	}
	if f.Changed("format") {
		p.Format, _ = f.GetString("format")
	}
	if f.Changed("strict") {
		p.Strict, _ = f.GetBool("strict")
	}
	if f.Changed("solve-timeout") {
		p.SolveTimeout, _ = f.GetInt("solve-timeout")
	}
	if f.Changed("catalog") {
		p.CatalogFile, _ = f.GetString("catalog")
	}
	return p, nil
}

// signalContext cancels on interrupt so in-flight solver runs are killed
// instead of orphaned.
func signalContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt)
	return ctx
}
