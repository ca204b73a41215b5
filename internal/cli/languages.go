package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/deepscan/internal/domain/analysis"
)

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the languages deepscan knows",
		Run: func(cmd *cobra.Command, args []string) {
			for _, l := range analysis.SupportedLanguages {
				fmt.Fprintln(cmd.OutOrStdout(), l)
			}
		},
	}
}
