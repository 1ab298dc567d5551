/*
Copyright © 2021 hit.zhangjie@gmail.com

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
	"errors"

	"github.com/spf13/cobra"

	"github.com/hitzhangjie/dwarfview/cmd/explore"
	"github.com/hitzhangjie/dwarfview/pkg/symbol"
)

// exploreCmd represents the explore command
var exploreCmd = &cobra.Command{
	Use:   "explore <prog>",
	Short: "explore the DWARF data of an executable interactively",
	Long:  `explore the DWARF data of an executable interactively.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("expected exactly one executable file")
		}

		bi, err := symbol.Analyze(args[0])
		if err != nil {
			return err
		}
		explore.Target = bi
		return nil
	},
	PostRunE: func(cmd *cobra.Command, args []string) error {
		explore.CurrentSession = explore.NewExploreSession()
		explore.CurrentSession.Start()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}
