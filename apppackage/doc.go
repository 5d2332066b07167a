// Package apppackage materializes a virtual filesystem view of a remote application package that is
// exposed only through an HTTP directory listing API: GET on a directory URL returns a JSON array of
// child references, and references ending with a slash are directories.
//
// Three independent views are built on top of the listing API, each re-crawled on every call:
//
//   - Crawler builds a lazy tree of names and paths without downloading any file bytes.
//   - ContentFetcher fetches a single file's text on demand.
//   - Archiver streams the whole package into a ZIP archive, holding at most one file in flight.
//
// All traversals are sequential and blocking. Remote failures degrade to empty results at the
// remote.Getter boundary; only failures to produce the archive itself surface as errors.
package apppackage
