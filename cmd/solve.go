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
	"github.com/spf13/cobra"

	"femgen/pipeline"
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Run FreeFem++ over every generated solver script",
	Long: `Walk the output directory for solver.edp files and run FreeFem++ on
each in parallel. A run succeeds when it produces results.dat; stale results
are removed beforehand so success always reflects the current run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadParameters(cmd)
		if err != nil {
			return err
		}
		return pipeline.Solve(signalContext(), p)
	},
}

func init() {
	rootCmd.AddCommand(solveCmd)
}
