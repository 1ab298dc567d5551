package explore

import (
	"fmt"

	"github.com/spf13/cobra"
)

var diesCmd = &cobra.Command{
	Use:   "dies <cu-index>",
	Short: "list the DIEs of a compile unit in stream order",
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupInfo,
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cu, err := unitByIndexArg(args)
		if err != nil {
			return err
		}

		dies, err := cu.DIEs()
		if err != nil {
			return err
		}

		for i, die := range dies {
			if die.Null {
				fmt.Printf("#%d <%#x> NULL (size %d)\n", i, die.Offset, die.Size)
				continue
			}
			fmt.Printf("#%d <%#x> %s (size %d, %d attrs)\n", i, die.Offset, die.Tag, die.Size, len(die.Attrs))
			for _, attr := range die.Attrs {
				fmt.Printf("      %-18s %v\n", attr.Attr, attr.Val)
			}
		}
		return nil
	},
}

func init() {
	exploreRootCmd.AddCommand(diesCmd)
}
