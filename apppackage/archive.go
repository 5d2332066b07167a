package apppackage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vispana/apppackage-client/common"
	"github.com/vispana/apppackage-client/common/urlpath"
	"github.com/vispana/apppackage-client/common/util"
	"github.com/vispana/apppackage-client/remote"
)

// archiveStats summarizes a finished archive.
type archiveStats struct {
	Files       int // file entries written
	Directories int // directory entries written
	Skipped     int // files that could not be fetched completely
}

// Archiver streams a remote application package into a ZIP archive.
type Archiver struct {
	getter remote.Getter
	logger *logrus.Logger
}

// NewArchiver creates an archiver reading listings and files through getter.
func NewArchiver(getter remote.Getter, opt ...common.LogOption) *Archiver {
	return &Archiver{
		getter: getter,
		logger: common.NewLogger(opt...),
	}
}

// StreamArchive crawls the listing API breadth first starting at baseURL and writes a ZIP archive
// to sink. Directory entries are explicit, and every ancestor directory of a file is written before
// the file itself. Each file is fetched completely into a reused buffer before its entry is
// written, so at most one file's bytes are held at a time.
//
// A file that cannot be fetched completely is skipped without aborting the archive, and no entry is
// written for it. The archive is always finalized; an error is returned only if writing to sink or
// finalizing the archive fails, in which case the archive must be considered incomplete.
func (archiver *Archiver) StreamArchive(ctx context.Context, baseURL string, sink io.Writer) (err error) {
	session := newArchiveSession(archiver, sink)

	defer func() {
		if closeErr := session.writer.Close(); closeErr != nil && err == nil {
			err = errors.WithMessage(closeErr, "failed to finalize archive")
		}

		if err != nil {
			archiver.logger.WithError(err).WithField("url", baseURL).Error("Failed to stream archive")
		} else {
			archiver.logger.WithFields(logrus.Fields{
				"url":     baseURL,
				"files":   session.stats.Files,
				"dirs":    session.stats.Directories,
				"skipped": session.stats.Skipped,
			}).Info("Succeeded to stream archive")
		}
	}()

	archiver.logger.WithField("url", baseURL).Info("Begin to stream archive")

	return session.run(ctx, baseURL)
}

// ArchiveBytes builds the same archive as StreamArchive into memory and returns its bytes.
func (archiver *Archiver) ArchiveBytes(ctx context.Context, baseURL string) ([]byte, error) {
	var buf bytes.Buffer
	if err := archiver.StreamArchive(ctx, baseURL, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// archiveSession holds the state of one archive: the queue, the entries already written and the
// file buffer. It is owned by a single StreamArchive call.
type archiveSession struct {
	*Archiver

	writer   *zip.Writer
	added    map[string]struct{} // archive paths already written, directories end with a slash
	listed   map[string]struct{} // directory URLs already enqueued
	file     bytes.Buffer        // content of the file being archived
	modified time.Time
	reminder *util.Reminder
	stats    archiveStats
}

func newArchiveSession(archiver *Archiver, sink io.Writer) *archiveSession {
	return &archiveSession{
		Archiver: archiver,
		writer:   zip.NewWriter(sink),
		added:    make(map[string]struct{}),
		listed:   make(map[string]struct{}),
		modified: time.Now(),
		reminder: util.NewReminder(archiver.logger, logrus.DebugLevel, defaultRemindInterval),
	}
}

func (session *archiveSession) run(ctx context.Context, baseURL string) error {
	queue := []string{baseURL}
	session.listed[baseURL] = struct{}{}

	for len(queue) > 0 {
		currentURL := queue[0]
		queue = queue[1:]

		entries := session.list(ctx, currentURL)
		session.reminder.Remind("Directory listed", logrus.Fields{
			"url":     currentURL,
			"entries": len(entries),
			"files":   session.stats.Files,
			"dirs":    session.stats.Directories,
		})

		for _, entry := range entries {
			resolved := urlpath.Resolve(currentURL, entry)
			isDir := urlpath.IsDirRef(entry)
			zipPath := urlpath.ToRelativePath(baseURL, resolved, isDir)

			if isDir {
				if err := session.addDir(zipPath); err != nil {
					return err
				}

				if _, ok := session.listed[resolved]; !ok {
					session.listed[resolved] = struct{}{}
					queue = append(queue, resolved)
				}

				continue
			}

			if err := session.addFile(ctx, zipPath, resolved); err != nil {
				return err
			}
		}
	}

	return nil
}

// list returns the entries of a directory, or none if listing it panics.
func (session *archiveSession) list(ctx context.Context, dirURL string) (entries []string) {
	defer func() {
		if r := recover(); r != nil {
			session.logger.WithFields(logrus.Fields{
				"url":   dirURL,
				"panic": fmt.Sprint(r),
			}).Warn("Failed to list directory, skipped")
			entries = nil
		}
	}()

	return remote.List(ctx, session.getter, dirURL)
}

func (session *archiveSession) isAdded(zipPath string) bool {
	_, ok := session.added[zipPath]
	return ok
}

// addDir writes an empty directory entry unless one exists already.
func (session *archiveSession) addDir(zipPath string) error {
	if session.isAdded(zipPath) {
		return nil
	}

	_, err := session.writer.CreateHeader(&zip.FileHeader{
		Name:     zipPath,
		Method:   zip.Store,
		Modified: session.modified,
	})
	if err != nil {
		return errors.WithMessagef(err, "failed to write directory entry %s", zipPath)
	}

	session.added[zipPath] = struct{}{}
	session.stats.Directories++

	return nil
}

// addFile writes the missing ancestor directories of zipPath, then fetches the remote file and
// writes it into a new entry. Files that cannot be fetched are skipped.
func (session *archiveSession) addFile(ctx context.Context, zipPath, fileURL string) error {
	for _, dir := range urlpath.AncestorDirs(zipPath) {
		if err := session.addDir(dir); err != nil {
			return err
		}
	}

	logger := session.logger.WithFields(logrus.Fields{
		"path": zipPath,
		"url":  fileURL,
	})

	if session.isAdded(zipPath) {
		logger.Debug("Duplicate file entry ignored")
		return nil
	}

	if !session.fetch(ctx, logger, fileURL) {
		session.stats.Skipped++
		return nil
	}

	w, err := session.writer.CreateHeader(&zip.FileHeader{
		Name:     zipPath,
		Method:   zip.Deflate,
		Modified: session.modified,
	})
	if err != nil {
		return errors.WithMessagef(err, "failed to write file entry %s", zipPath)
	}

	if _, err = session.file.WriteTo(w); err != nil {
		return errors.WithMessagef(err, "failed to write file entry %s", zipPath)
	}

	session.added[zipPath] = struct{}{}
	session.stats.Files++

	logger.Debug("File archived")

	return nil
}

// fetch reads the remote file into the session buffer and reports whether it was read completely.
// Transport failures, including panics, are logged and reported as false.
func (session *archiveSession) fetch(ctx context.Context, logger *logrus.Entry, fileURL string) (ok bool) {
	session.file.Reset()

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", fmt.Sprint(r)).Warn("Failed to fetch file, skipped")
			ok = false
		}
	}()

	body, err := session.getter.Open(ctx, fileURL)
	if err != nil {
		logger.WithError(err).Warn("Failed to fetch file, skipped")
		return false
	}
	defer body.Close()

	if _, err = session.file.ReadFrom(body); err != nil {
		logger.WithError(err).Warn("Failed to read file, skipped")
		return false
	}

	return true
}
