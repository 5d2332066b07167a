package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the file tree of the application package",
	Run:   tree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

func tree(cmd *cobra.Command, _ []string) {
	summary, err := newService().Tree(cmd.Context(), mustConfigHost())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to build file tree")
	}

	printJSON(summary)
}
