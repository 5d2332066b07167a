package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Print the overview of the application package",
	Run:   overview,
}

func init() {
	rootCmd.AddCommand(overviewCmd)
}

func overview(cmd *cobra.Command, _ []string) {
	result, err := newService().Overview(cmd.Context(), mustConfigHost())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to collect overview")
	}

	printJSON(result)
}
