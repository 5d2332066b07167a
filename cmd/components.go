package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var componentsCmd = &cobra.Command{
	Use:   "components",
	Short: "Print the filesystem of the components archive",
	Run:   printComponents,
}

func init() {
	rootCmd.AddCommand(componentsCmd)
}

func printComponents(cmd *cobra.Command, _ []string) {
	fs, err := newService().Components(cmd.Context(), mustConfigHost())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to build components filesystem")
	}

	printJSON(fs)
}
