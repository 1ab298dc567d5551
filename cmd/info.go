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
	"strings"

	"github.com/spf13/cobra"

	"github.com/hitzhangjie/dwarfview/pkg/dwarf/info"
	"github.com/hitzhangjie/dwarfview/pkg/symbol"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <prog>",
	Short: "dump the compile units and DIEs of .(z)debug_info",
	Long:  `dump the compile units and DIEs of .(z)debug_info.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("expected exactly one executable file")
		}

		bi, err := symbol.Analyze(args[0])
		if err != nil {
			return err
		}

		for i, cu := range bi.Info.CompileUnits() {
			name, err := bi.CompileUnitName(cu)
			if err != nil {
				return err
			}
			fmt.Printf("compile unit #%d %q at %#x, boundary %#x\n", i, name, cu.Offset(), cu.Boundary())

			if err := printDIEs(cu); err != nil {
				return err
			}
			fmt.Println()
		}
		return nil
	},
}

// printDIEs prints the unit's flat DIE list as a tree: a DIE announcing
// children opens one level, a null entry closes it.
func printDIEs(cu *info.CompileUnit) error {
	dies, err := cu.DIEs()
	if err != nil {
		return err
	}

	depth := 0
	for _, die := range dies {
		if die.Null {
			if depth > 0 {
				depth--
			}
			continue
		}

		indent := strings.Repeat("  ", depth)
		fmt.Printf("%s<%#x> %s\n", indent, die.Offset, die.Tag)
		for _, attr := range die.Attrs {
			fmt.Printf("%s    %-18s %v\n", indent, attr.Attr, attr.Val)
		}

		if die.Children {
			depth++
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
