package fstree

import (
	"sort"
	"strings"
)

// FromFlatMap folds a flat map of slash separated entry paths into a tree rooted at a synthetic
// directory node. Intermediate directories are created once and reused for every path sharing the
// same prefix; each path's last segment becomes a file node carrying its content.
func FromFlatMap(rootName, rootPath string, contents map[string]string) *TreeNode {
	root := NewDirNode(rootName, rootPath)

	// fixed order keeps file/directory collisions deterministic
	paths := make([]string, 0, len(contents))
	for p := range contents {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, filePath := range paths {
		parts := strings.Split(filePath, "/")
		current := root

		for i := 0; i < len(parts)-1; i++ {
			dirName := parts[i]
			child, found := current.Search(dirName)
			if !found || child.IsLeaf {
				child = NewDirNode(dirName, strings.Join(parts[:i+1], "/"))
				current.AddChild(child)
			}
			current = child
		}

		fileName := parts[len(parts)-1]
		current.AddChild(NewContentNode(fileName, filePath, contents[filePath]))
	}

	return root
}
