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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hitzhangjie/dwarfview/pkg/symbol"
)

// abbrevCmd represents the abbrev command
var abbrevCmd = &cobra.Command{
	Use:   "abbrev <prog>",
	Short: "dump the abbreviation tables of .(z)debug_abbrev",
	Long:  `dump the abbreviation tables of .(z)debug_abbrev.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("expected exactly one executable file")
		}

		bi, err := symbol.Analyze(args[0])
		if err != nil {
			return err
		}

		// resolve each unit's table through the shared cache, so units
		// pointing at the same offset print the same table once
		seen := map[uint64]bool{}
		for i, cu := range bi.Info.CompileUnits() {
			table, err := cu.AbbrevTable()
			if err != nil {
				return err
			}
			if seen[table.Offset] {
				fmt.Printf("compile unit #%d: abbrev table at %#x (shown above)\n", i, table.Offset)
				continue
			}
			seen[table.Offset] = true

			fmt.Printf("compile unit #%d: abbrev table at %#x, %d declarations\n", i, table.Offset, table.Len())
			for _, decl := range table.Decls() {
				children := "no children"
				if decl.Children {
					children = "has children"
				}
				fmt.Printf("  [%d] tag %#x, %s\n", decl.Code, decl.Tag, children)
				for _, spec := range decl.Attrs {
					fmt.Printf("      attr %#x form %#x\n", spec.Attr, uint64(spec.Form))
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(abbrevCmd)
}
