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

// frameCmd represents the frame command
var frameCmd = &cobra.Command{
	Use:   "frame <prog>",
	Short: "dump the call frame information of .(z)debug_frame",
	Long:  `dump the call frame information of .(z)debug_frame.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("expected exactly one executable file")
		}

		bi, err := symbol.Analyze(args[0])
		if err != nil {
			return err
		}
		if len(bi.FdeEntries) == 0 {
			return errors.New("no frame entries found")
		}

		for i, fde := range bi.FdeEntries {
			fmt.Printf("fde #%d range [%#x, %#x), %d instruction bytes\n",
				i, fde.Begin(), fde.End(), len(fde.Instructions))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(frameCmd)
}
