package apppackage

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vispana/apppackage-client/common"
	"github.com/vispana/apppackage-client/common/urlpath"
	"github.com/vispana/apppackage-client/remote"
)

const (
	EmptyFileContent  = "// Empty file or could not read as text"
	BinaryFileContent = "// Binary file: Not displayable as text"

	errorContentPrefix = "// Error reading file: "

	modelsSegment = "models"
)

// nonReadableExtensions are never fetched for text rendering.
var nonReadableExtensions = map[string]struct{}{
	"jar":   {},
	"zip":   {},
	"class": {},
}

// FileContent is a file of the application package along with the URL it was read from.
type FileContent struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// IsBinaryPath reports whether the file at relativePath is excluded from text rendering, either by
// its extension or because it lives in a models directory.
func IsBinaryPath(relativePath string) bool {
	if _, ok := nonReadableExtensions[urlpath.Extension(relativePath)]; ok {
		return true
	}
	return urlpath.HasSegment(relativePath, modelsSegment)
}

// ContentFetcher fetches single files of the application package on demand.
type ContentFetcher struct {
	getter remote.Getter
	logger *logrus.Logger
}

// NewContentFetcher creates a fetcher reading files through getter.
func NewContentFetcher(getter remote.Getter, opt ...common.LogOption) *ContentFetcher {
	return &ContentFetcher{
		getter: getter,
		logger: common.NewLogger(opt...),
	}
}

// ReadFile applies the binary exclusion policy before fetching: excluded files are reported with
// their URL and a fixed placeholder, and no request is sent for them.
func (fetcher *ContentFetcher) ReadFile(ctx context.Context, baseURL, relativePath string) FileContent {
	if IsBinaryPath(relativePath) {
		return FileContent{
			URL:     urlpath.Join(baseURL, relativePath),
			Content: BinaryFileContent,
		}
	}

	return fetcher.FetchContent(ctx, baseURL, relativePath)
}

// FetchContent fetches the text of a single file. Failures never surface to the caller: a failed
// or empty fetch yields EmptyFileContent, and a panic raised by the transport is reported through
// placeholder content embedding its reason.
func (fetcher *ContentFetcher) FetchContent(ctx context.Context, baseURL, relativePath string) (result FileContent) {
	fileURL := urlpath.Join(baseURL, relativePath)
	logger := fetcher.logger.WithField("url", fileURL)

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", fmt.Sprint(r)).Error("Failed to fetch file content")
			result = FileContent{URL: fileURL, Content: errorContentPrefix + fmt.Sprint(r)}
		}
	}()

	logger.Info("Fetching file content")

	content := remote.Text(ctx, fetcher.getter, fileURL, "")
	if len(content) == 0 {
		logger.Warn("File content is empty or unreadable")
		return FileContent{URL: fileURL, Content: EmptyFileContent}
	}

	logger.WithField("chars", len(content)).Info("Succeeded to fetch file content")

	return FileContent{URL: fileURL, Content: content}
}
