package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "Show example questions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		printExamples(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(examplesCmd)
}

func printExamples(out io.Writer) {
	for i, q := range domain.ExampleQuestions() {
		fmt.Fprintf(out, "  %d. %s\n", i+1, q)
	}
}
