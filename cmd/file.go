package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	fileArgs struct {
		path string
		raw  bool
	}

	fileCmd = &cobra.Command{
		Use:   "file",
		Short: "Print a single file of the application package",
		Run:   file,
	}
)

func init() {
	fileCmd.Flags().StringVar(&fileArgs.path, "path", "", "File path relative to the package root, e.g. schemas/music.sd")
	fileCmd.MarkFlagRequired("path")
	fileCmd.Flags().BoolVar(&fileArgs.raw, "raw", false, "Print the content only instead of JSON")

	rootCmd.AddCommand(fileCmd)
}

func file(cmd *cobra.Command, _ []string) {
	content, err := newService().File(cmd.Context(), mustConfigHost(), fileArgs.path)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read file")
	}

	if fileArgs.raw {
		fmt.Println(content.Content)
		return
	}

	printJSON(content)
}
