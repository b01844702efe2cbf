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

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert generated EPS plots with Ghostscript",
	Long: `Find every EPS file under the eps/ directories of the output tree and
convert it to the configured format (png, pdf or jpg) at the configured DPI.
Converted files land in a sibling directory named after the format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadParameters(cmd)
		if err != nil {
			return err
		}
		return pipeline.Convert(signalContext(), p)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
