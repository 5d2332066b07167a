// Package components builds a browsable filesystem from the components JAR of an application
// package. The JAR is downloaded as a stream and read entry by entry without touching the disk;
// text entries are inlined, class files and other binaries are replaced by placeholders.
package components

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/vispana/apppackage-client/common"
	"github.com/vispana/apppackage-client/common/urlpath"
	"github.com/vispana/apppackage-client/common/zipstream"
	"github.com/vispana/apppackage-client/fstree"
	"github.com/vispana/apppackage-client/remote"
)

const (
	RootName = "root"
	RootPath = "/"

	componentsDir = "components/"
)

// Builder builds ArchiveFilesystem trees from remote archives.
type Builder struct {
	getter remote.Getter
	logger *logrus.Logger
}

// NewBuilder creates a builder downloading archives through getter.
func NewBuilder(getter remote.Getter, opt ...common.LogOption) *Builder {
	return &Builder{
		getter: getter,
		logger: common.NewLogger(opt...),
	}
}

// BuildFromArchive downloads the archive at archiveURL as a stream and builds its filesystem.
// If the archive cannot be downloaded, the result has no root and zero files.
func (builder *Builder) BuildFromArchive(ctx context.Context, archiveURL, archiveName string) *fstree.ArchiveFilesystem {
	logger := builder.logger.WithField("url", archiveURL)
	logger.Info("Building filesystem from archive")

	body, err := builder.getter.Open(ctx, archiveURL)
	if err != nil {
		logger.WithError(err).Error("Failed to download archive")
		return &fstree.ArchiveFilesystem{ComponentArchiveName: archiveName}
	}
	defer body.Close()

	return builder.BuildFromReader(body, archiveName)
}

// BuildFromReader reads the archive entries from r sequentially and folds them into a tree.
// A corrupt entry is replaced by an error placeholder; if the stream itself cannot be followed
// any further, the entries read so far are kept.
func (builder *Builder) BuildFromReader(r io.Reader, archiveName string) *fstree.ArchiveFilesystem {
	contents := make(map[string]string)
	zr := zipstream.NewReader(r)

	for {
		entry, err := zr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			builder.logger.WithError(err).WithField("archive", archiveName).Warn("Failed to read next archive entry, stop reading")
			break
		}

		if entry.IsDir() {
			continue
		}

		contents[entry.Name] = builder.readContent(zr, entry.Name)
		builder.logger.WithField("entry", entry.Name).Debug("Extracted archive entry")
	}

	root := fstree.FromFlatMap(RootName, RootPath, contents)
	files, _ := root.Count()

	if files < len(contents) {
		builder.logger.WithFields(logrus.Fields{
			"archive": archiveName,
			"entries": len(contents),
			"files":   files,
		}).Warn("Archive entries shadowed by directories of the same path")
	}

	builder.logger.WithFields(logrus.Fields{
		"archive": archiveName,
		"files":   files,
	}).Info("Succeeded to build filesystem from archive")

	return &fstree.ArchiveFilesystem{
		ComponentArchiveName: archiveName,
		Root:                 root,
		TotalFiles:           files,
	}
}

// readContent renders the current entry of zr according to its kind.
func (builder *Builder) readContent(zr io.Reader, entryName string) string {
	switch Classify(entryName) {
	case KindText:
		data, err := io.ReadAll(zr)
		if err != nil {
			builder.logger.WithError(err).WithField("entry", entryName).Warn("Failed to read archive entry")
			return ErrorPlaceholder(err)
		}
		return string(data)
	case KindBytecode:
		return BytecodePlaceholder(entryName)
	default:
		return BinaryPlaceholder(entryName)
	}
}

// ComponentArchiveName lists the components directory below contentURL and returns the name of
// the first archive found, or "" if there is none.
func (builder *Builder) ComponentArchiveName(ctx context.Context, contentURL string) string {
	entries := remote.List(ctx, builder.getter, urlpath.Join(contentURL, componentsDir))
	if len(entries) == 0 {
		return ""
	}

	name := urlpath.ExtractName(entries[0])
	builder.logger.WithField("name", name).Info("Component archive located")

	return name
}

// ComponentFilesystem builds the filesystem of the first components archive below contentURL.
// Without any components archive, the result has no name, no root and zero files.
func (builder *Builder) ComponentFilesystem(ctx context.Context, contentURL string) *fstree.ArchiveFilesystem {
	name := builder.ComponentArchiveName(ctx, contentURL)
	if len(name) == 0 {
		builder.logger.WithField("url", contentURL).Debug("No component archive found")
		return &fstree.ArchiveFilesystem{}
	}

	archiveURL := urlpath.Join(contentURL, componentsDir+name)
	return builder.BuildFromArchive(ctx, archiveURL, name)
}
