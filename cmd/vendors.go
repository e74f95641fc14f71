package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/ginjaninja78/processautomate/internal/converter"
	"github.com/ginjaninja78/processautomate/internal/types"
	"github.com/spf13/cobra"
)

// vendorsCmd lists the supported variants and their expected input.
var vendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "List supported vendor variants",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VARIANT\tINPUT")
		for _, v := range types.Variants() {
			fmt.Fprintf(w, "%s\t%s\n", v, converter.Describe(v))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(vendorsCmd)
}
