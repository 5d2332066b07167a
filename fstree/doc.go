// Package fstree models the virtual filesystem view of a remote application package. The remote host
// only exposes directory listings, so a tree is materialized per request and handed to the caller
// in a JSON friendly shape.
//
// The main features of this package include:
//
//   - Defining the TreeNode structure, which models files and directories in a nested, hierarchical
//     format. Directory nodes own a children map keyed by name; file nodes never have children.
//   - Wrapping a materialized tree with its counters (TreeSummary) or with the name of the archive it
//     was read from (ArchiveFilesystem).
//   - Folding a flat map of archive entry paths into a tree of directory and file nodes.
//   - Locating, searching and traversing nodes by relative path.
//
// Trees are strictly hierarchical: no node is referenced from two parents, so cycles are impossible
// by construction.
package fstree
