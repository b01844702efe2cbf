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

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Assemble FreeFEM solver scripts from the problem catalog",
	Long: `Expand the problem catalog into tasks, derive the exact solution
quantities symbolically, and write one self-contained solver.edp per task
under {output}/{name}/{fespace}/.

Filtering uses plain substring matching against the task path, for example:
  femgen generate --filter Dirichlet
  femgen generate --filter Square/BDM1_P2
  femgen generate --filter BercEng`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadParameters(cmd)
		if err != nil {
			return err
		}
		cat, err := pipeline.LoadCatalog(p)
		if err != nil {
			return err
		}
		return pipeline.Generate(signalContext(), p, cat)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
