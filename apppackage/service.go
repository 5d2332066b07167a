package apppackage

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/vispana/apppackage-client/common"
	"github.com/vispana/apppackage-client/components"
	"github.com/vispana/apppackage-client/fstree"
	"github.com/vispana/apppackage-client/remote"
)

// Service resolves the application deployed on a config host and serves every view of its
// package. It keeps no state between calls.
type Service struct {
	getter   remote.Getter
	locator  *Locator
	crawler  *Crawler
	fetcher  *ContentFetcher
	archiver *Archiver
	builder  *components.Builder
	logger   *logrus.Logger
}

// NewService creates a service whose components all share getter and the log option.
func NewService(getter remote.Getter, opt ...common.LogOption) *Service {
	return &Service{
		getter:   getter,
		locator:  NewLocator(getter, opt...),
		crawler:  NewCrawler(getter, opt...),
		fetcher:  NewContentFetcher(getter, opt...),
		archiver: NewArchiver(getter, opt...),
		builder:  components.NewBuilder(getter, opt...),
		logger:   common.NewLogger(opt...),
	}
}

func (service *Service) contentURL(ctx context.Context, configHost string) (string, error) {
	appURL, err := service.locator.ApplicationURL(ctx, configHost)
	if err != nil {
		return "", err
	}
	return ContentURL(appURL), nil
}

// Tree returns the lazy tree of the application package.
func (service *Service) Tree(ctx context.Context, configHost string) (*fstree.TreeSummary, error) {
	contentURL, err := service.contentURL(ctx, configHost)
	if err != nil {
		return nil, err
	}
	return service.crawler.BuildTree(ctx, contentURL), nil
}

// File returns the text of the file at relativePath, subject to the binary exclusion policy.
func (service *Service) File(ctx context.Context, configHost, relativePath string) (FileContent, error) {
	contentURL, err := service.contentURL(ctx, configHost)
	if err != nil {
		return FileContent{}, err
	}
	return service.fetcher.ReadFile(ctx, contentURL, relativePath), nil
}

// Download streams the ZIP archive of the application package to sink.
func (service *Service) Download(ctx context.Context, configHost string, sink io.Writer) error {
	contentURL, err := service.contentURL(ctx, configHost)
	if err != nil {
		return err
	}
	return service.archiver.StreamArchive(ctx, contentURL, sink)
}

// DownloadBytes returns the ZIP archive of the application package in memory.
func (service *Service) DownloadBytes(ctx context.Context, configHost string) ([]byte, error) {
	contentURL, err := service.contentURL(ctx, configHost)
	if err != nil {
		return nil, err
	}
	return service.archiver.ArchiveBytes(ctx, contentURL)
}

// Components returns the filesystem of the components archive.
func (service *Service) Components(ctx context.Context, configHost string) (*fstree.ArchiveFilesystem, error) {
	contentURL, err := service.contentURL(ctx, configHost)
	if err != nil {
		return nil, err
	}
	return service.builder.ComponentFilesystem(ctx, contentURL), nil
}

// Overview returns the summary of the application package.
func (service *Service) Overview(ctx context.Context, configHost string) (*PackageOverview, error) {
	appURL, err := service.locator.ApplicationURL(ctx, configHost)
	if err != nil {
		return nil, err
	}

	service.logger.WithField("app", appURL).Debug("Collecting package overview")

	return Overview(ctx, service.getter, service.builder, appURL), nil
}
