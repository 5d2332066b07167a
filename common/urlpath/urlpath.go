// Package urlpath resolves child references returned by a remote directory listing against the
// listing URL, and maps the resolved URLs to archive-relative paths.
//
// All functions are pure: identical inputs always produce identical outputs.
package urlpath

import (
	"net/url"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[:/?#]+`)

// IsAbsoluteURL reports whether the reference already carries an http(s) scheme.
func IsAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// IsDirRef reports whether a listing reference denotes a directory, i.e. ends with a slash.
func IsDirRef(ref string) bool {
	return strings.HasSuffix(ref, "/")
}

// Resolve resolves childRef against currentURL.
//
// Fully qualified references are returned unchanged. Both `/`-absolute and relative references are
// resolved with standard URI semantics; if currentURL cannot be parsed, childRef is appended to it.
func Resolve(currentURL, childRef string) string {
	if IsAbsoluteURL(childRef) {
		return childRef
	}

	base, err := url.Parse(currentURL)
	if err == nil {
		var ref *url.URL
		if ref, err = url.Parse(childRef); err == nil {
			return base.ResolveReference(ref).String()
		}
	}

	return concat(currentURL, childRef)
}

func concat(currentURL, childRef string) string {
	if strings.HasSuffix(currentURL, "/") {
		return currentURL + childRef
	}
	return currentURL + "/" + childRef
}

// ExtractName returns the last path segment of ref, ignoring one trailing slash.
func ExtractName(ref string) string {
	cleaned := strings.TrimSuffix(ref, "/")
	if i := strings.LastIndex(cleaned, "/"); i >= 0 {
		return cleaned[i+1:]
	}
	return cleaned
}

// ToRelativePath computes the path of absoluteURL relative to baseURL. When absoluteURL is not
// below baseURL, the URI path without its leading slash is used instead, and as a last resort the
// sanitized URL. Directory paths always end with a slash.
func ToRelativePath(baseURL, absoluteURL string, isDir bool) string {
	var relative string

	if strings.HasPrefix(absoluteURL, baseURL) {
		relative = absoluteURL[len(baseURL):]
	} else if u, err := url.Parse(absoluteURL); err == nil {
		relative = strings.TrimPrefix(u.Path, "/")
	} else {
		relative = unsafeChars.ReplaceAllString(absoluteURL, "_")
	}

	if isDir && !strings.HasSuffix(relative, "/") {
		relative += "/"
	}

	return relative
}

// Join appends a relative path to a base URL with exactly one separating slash.
func Join(baseURL, relativePath string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(relativePath, "/")
}

// Extension returns the text after the last dot of the final path segment, or "" if there is none.
func Extension(path string) string {
	name := ExtractName(path)
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return ""
}

// AncestorDirs returns every slash-terminated prefix of path, shortest first. The path itself is
// never included, e.g. "a/b/c.txt" yields ["a/", "a/b/"].
func AncestorDirs(path string) []string {
	var dirs []string

	for i := 1; i < len(path); i++ {
		if path[i] == '/' && i < len(path)-1 {
			dirs = append(dirs, path[:i+1])
		}
	}

	return dirs
}

// HasSegment reports whether segment appears as a complete directory segment of path,
// e.g. "models" matches "models/x.onnx" and "a/models/x.onnx" but not "mymodels/x.onnx".
func HasSegment(path, segment string) bool {
	path = strings.TrimPrefix(path, "/")
	return strings.HasPrefix(path, segment+"/") || strings.Contains(path, "/"+segment+"/")
}
