package apppackage

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vispana/apppackage-client/common"
	"github.com/vispana/apppackage-client/common/urlpath"
	"github.com/vispana/apppackage-client/common/util"
	"github.com/vispana/apppackage-client/fstree"
	"github.com/vispana/apppackage-client/remote"
)

const (
	RootName = "content"
	RootPath = "/"

	defaultRemindInterval = 30 * time.Second
)

// Crawler builds the lazy tree of a remote application package.
type Crawler struct {
	getter remote.Getter
	logger *logrus.Logger
}

// NewCrawler creates a crawler reading directory listings through getter.
func NewCrawler(getter remote.Getter, opt ...common.LogOption) *Crawler {
	return &Crawler{
		getter: getter,
		logger: common.NewLogger(opt...),
	}
}

// pendingDir is a directory node that has been attached to the tree but not listed yet.
type pendingDir struct {
	url  string
	node *fstree.TreeNode
}

// BuildTree crawls the listing API breadth first starting at baseURL and returns the tree of
// discovered paths. No file content is downloaded.
//
// Directories whose listing fails are recorded without children. BuildTree never fails: any
// unexpected panic during the traversal yields an empty root with zero counters.
func (crawler *Crawler) BuildTree(ctx context.Context, baseURL string) (summary *fstree.TreeSummary) {
	defer func() {
		if r := recover(); r != nil {
			crawler.logger.WithFields(logrus.Fields{
				"url":   baseURL,
				"panic": fmt.Sprint(r),
			}).Error("Failed to build file tree")
			summary = fstree.NewEmptySummary(RootName, RootPath)
		}
	}()

	crawler.logger.WithField("url", baseURL).Info("Begin to build file tree")

	summary = fstree.NewEmptySummary(RootName, RootPath)
	reminder := util.NewReminder(crawler.logger, logrus.DebugLevel, defaultRemindInterval)

	queue := []pendingDir{{url: baseURL, node: summary.Root}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		entries := remote.List(ctx, crawler.getter, current.url)
		reminder.Remind("Directory listed", logrus.Fields{
			"url":     current.url,
			"entries": len(entries),
			"files":   summary.TotalFiles,
			"dirs":    summary.TotalDirectories,
		})

		for _, entry := range entries {
			resolved := urlpath.Resolve(current.url, entry)
			isDir := urlpath.IsDirRef(entry)
			name := urlpath.ExtractName(entry)
			relativePath := urlpath.ToRelativePath(baseURL, resolved, isDir)

			crawler.logger.WithFields(logrus.Fields{
				"entry": entry,
				"dir":   isDir,
				"name":  name,
				"path":  relativePath,
			}).Debug("Tree entry discovered")

			if isDir {
				dirNode := fstree.NewDirNode(name, relativePath)
				current.node.AddChild(dirNode)
				summary.TotalDirectories++
				queue = append(queue, pendingDir{url: resolved, node: dirNode})
			} else {
				current.node.AddChild(fstree.NewFileNode(name, relativePath))
				summary.TotalFiles++
			}
		}
	}

	crawler.logger.WithFields(logrus.Fields{
		"files": summary.TotalFiles,
		"dirs":  summary.TotalDirectories,
	}).Info("Succeeded to build file tree")

	return summary
}
