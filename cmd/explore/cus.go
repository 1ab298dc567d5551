package explore

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var cusCmd = &cobra.Command{
	Use:     "cus",
	Short:   "list the compile units of the binary",
	Aliases: []string{"units"},
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupInfo,
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "index\toffset\tboundary\tname")

		for i, cu := range Target.Info.CompileUnits() {
			name, err := Target.CompileUnitName(cu)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%d\t%#x\t%#x\t%s\n", i, cu.Offset(), cu.Boundary(), name)
		}
		return w.Flush()
	},
}

func init() {
	exploreRootCmd.AddCommand(cusCmd)
}
