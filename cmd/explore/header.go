package explore

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hitzhangjie/dwarfview/pkg/dwarf/info"
)

var headerCmd = &cobra.Command{
	Use:   "header <cu-index>",
	Short: "show the header fields of a compile unit",
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupInfo,
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cu, err := unitByIndexArg(args)
		if err != nil {
			return err
		}

		for _, field := range cu.Fields() {
			v, err := cu.Field(field)
			if err != nil {
				return err
			}
			fmt.Printf("%-20s %#x\n", field, v)
		}
		return nil
	},
}

// unitByIndexArg resolves the single <cu-index> argument against the
// explored binary's compile unit list.
func unitByIndexArg(args []string) (*info.CompileUnit, error) {
	if len(args) != 1 {
		return nil, errors.New("expected exactly one compile unit index")
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid compile unit index %q", args[0])
	}

	units := Target.Info.CompileUnits()
	if idx < 0 || idx >= len(units) {
		return nil, fmt.Errorf("compile unit index %d out of range [0, %d)", idx, len(units))
	}
	return units[idx], nil
}

func init() {
	exploreRootCmd.AddCommand(headerCmd)
}
