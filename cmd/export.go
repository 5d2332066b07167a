package cmd

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vispana/apppackage-client/common"
	"github.com/vispana/apppackage-client/objstore"
)

var (
	exportArgs struct {
		key    string
		bucket string
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Upload the application package archive to an S3 compatible object store",
		Run:   export,
	}
)

func init() {
	exportCmd.Flags().StringVar(&exportArgs.key, "key", "", "Object key of the archive, e.g. prod/vespa-app-package.zip")
	exportCmd.MarkFlagRequired("key")
	exportCmd.Flags().StringVar(&exportArgs.bucket, "bucket", "", "Bucket to upload to (env APPPKG_S3_BUCKET)")

	rootCmd.AddCommand(exportCmd)
}

func export(cmd *cobra.Command, _ []string) {
	s3Conf := conf.S3
	if len(exportArgs.bucket) > 0 {
		s3Conf.Bucket = exportArgs.bucket
	}

	store, err := objstore.NewStore(s3Conf, common.StandardLogOption())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize object store")
	}

	service := newService()
	host := mustConfigHost()

	info, err := store.Upload(cmd.Context(), exportArgs.key, func(w io.Writer) error {
		return service.Download(cmd.Context(), host, w)
	})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to export application package")
	}

	logrus.WithFields(logrus.Fields{
		"bucket": info.Bucket,
		"key":    info.Key,
		"size":   info.Size,
	}).Info("Succeeded to export application package")
}
