package fstree

import (
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// TreeNode represents a node in the filesystem hierarchy.
type TreeNode struct {
	Name     string               `json:"name"`              // Display label, the last path segment
	Path     string               `json:"path"`              // Path relative to the tree root
	IsLeaf   bool                 `json:"isLeaf"`            // Whether the node is a file
	Children map[string]*TreeNode `json:"children"`          // Directory entries (only for directories)
	Content  *string              `json:"content,omitempty"` // Inline content (only for archive entries)
}

// TreeSummary wraps a lazily crawled tree with its counters. The root node is not counted.
type TreeSummary struct {
	Root             *TreeNode `json:"root"`
	TotalFiles       int       `json:"totalFiles"`
	TotalDirectories int       `json:"totalDirectories"`
}

// ArchiveFilesystem wraps a content bearing tree built from a binary archive.
type ArchiveFilesystem struct {
	ComponentArchiveName string    `json:"componentArchiveName"`
	Root                 *TreeNode `json:"root"`
	TotalFiles           int       `json:"totalFiles"` // file nodes in Root; an entry shadowed by a directory of the same path is not counted
}

// NewDirNode creates a new TreeNode representing an empty directory.
func NewDirNode(name, path string) *TreeNode {
	return &TreeNode{
		Name:     name,
		Path:     path,
		Children: make(map[string]*TreeNode),
	}
}

// NewFileNode creates a new TreeNode representing a file without content.
func NewFileNode(name, path string) *TreeNode {
	return &TreeNode{
		Name:   name,
		Path:   path,
		IsLeaf: true,
	}
}

// NewContentNode creates a new TreeNode representing a file with inline content.
func NewContentNode(name, path, content string) *TreeNode {
	node := NewFileNode(name, path)
	node.Content = &content
	return node
}

// NewEmptySummary returns a summary with an empty root and zero counters.
func NewEmptySummary(rootName, rootPath string) *TreeSummary {
	return &TreeSummary{Root: NewDirNode(rootName, rootPath)}
}

// IsDir reports whether the node is a directory.
func (node *TreeNode) IsDir() bool {
	return !node.IsLeaf
}

// AddChild attaches child under its name. An existing child with the same name is replaced.
func (node *TreeNode) AddChild(child *TreeNode) {
	if node.Children == nil {
		node.Children = make(map[string]*TreeNode)
	}
	node.Children[child.Name] = child
}

// Search looks for an entry by name in the current directory node.
func (node *TreeNode) Search(name string) (*TreeNode, bool) {
	child, ok := node.Children[name]
	return child, ok
}

// Names returns the names of the node's children in ascending order.
func (node *TreeNode) Names() []string {
	names := make([]string, 0, len(node.Children))
	for name := range node.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ContentString returns the inline content, or "" if the node carries none.
func (node *TreeNode) ContentString() string {
	if node.Content == nil {
		return ""
	}
	return *node.Content
}

// Locate finds a sub-node based on the given slash separated path relative to the current node.
func (node *TreeNode) Locate(relativePath string) (*TreeNode, error) {
	var parts []string
	for _, part := range strings.Split(path.Clean("/"+relativePath), "/") {
		if len(part) > 0 {
			parts = append(parts, part)
		}
	}

	current := node
	for _, part := range parts {
		if current.IsLeaf {
			return nil, errors.Errorf("cannot locate '%s': '%s' is not a directory", part, current.Name)
		}

		child, found := current.Search(part)
		if !found {
			return nil, errors.Errorf("path not found: '%s'", part)
		}

		current = child
	}

	return current, nil
}

// Count returns the number of files and directories below the node, excluding the node itself.
func (node *TreeNode) Count() (files, dirs int) {
	node.Traverse(func(n *TreeNode, _ string) error {
		if n == node {
			return nil
		}
		if n.IsLeaf {
			files++
		} else {
			dirs++
		}
		return nil
	})
	return files, dirs
}

// Flatten collects the nodes of the tree along with their relative paths.
// The filterFunc is applied to each node to determine if it should be included in the result.
func (node *TreeNode) Flatten(filterFunc ...func(*TreeNode) bool) (result []*TreeNode, relpaths []string) {
	node.Traverse(func(n *TreeNode, p string) error {
		if len(filterFunc) == 0 || filterFunc[0](n) {
			result = append(result, n)
			relpaths = append(relpaths, p)
		}
		return nil
	})
	return result, relpaths
}

// Traverse walks the tree depth first, children in name order, and applies actionFunc to each
// node along with its slash separated path relative to the node Traverse was called on. The
// starting node itself is visited with an empty relative path.
func (node *TreeNode) Traverse(actionFunc func(node *TreeNode, relativePath string) error) error {
	return node.traverse("", actionFunc)
}

func (node *TreeNode) traverse(relative string, actionFunc func(node *TreeNode, relativePath string) error) error {
	if err := actionFunc(node, relative); err != nil {
		return err
	}

	if node.IsLeaf {
		return nil
	}

	for _, name := range node.Names() {
		if err := node.Children[name].traverse(path.Join(relative, name), actionFunc); err != nil {
			return err
		}
	}

	return nil
}
