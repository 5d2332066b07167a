package cmd

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const stdoutFile = "-"

var (
	downloadArgs struct {
		file     string
		inMemory bool
	}

	downloadCmd = &cobra.Command{
		Use:   "download",
		Short: "Download the application package as a zip archive",
		Run:   download,
	}
)

func init() {
	downloadCmd.Flags().StringVar(&downloadArgs.file, "file", "vespa-app-package.zip", "File name to write the archive to, - for stdout")
	downloadCmd.Flags().BoolVar(&downloadArgs.inMemory, "in-memory", false, "Build the whole archive in memory before writing it")

	rootCmd.AddCommand(downloadCmd)
}

func download(cmd *cobra.Command, _ []string) {
	var out io.Writer = os.Stdout

	if downloadArgs.file != stdoutFile {
		f, err := os.Create(downloadArgs.file)
		if err != nil {
			logrus.WithError(err).WithField("file", downloadArgs.file).Fatal("Failed to create file")
		}
		defer f.Close()
		out = f
	}

	service := newService()
	host := mustConfigHost()

	if downloadArgs.inMemory {
		data, err := service.DownloadBytes(cmd.Context(), host)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to build archive")
		}

		if _, err = out.Write(data); err != nil {
			logrus.WithError(err).Fatal("Failed to write archive")
		}
	} else if err := service.Download(cmd.Context(), host, out); err != nil {
		logrus.WithError(err).Fatal("Failed to download archive")
	}

	logrus.WithField("file", downloadArgs.file).Info("Succeeded to download application package")
}
