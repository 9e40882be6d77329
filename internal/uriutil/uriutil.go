// Package uriutil converts between file system paths and file:// URIs.
package uriutil

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// PathToURI converts a path to a file:// URI with percent-encoded
// segments. Relative paths are made absolute first.
func PathToURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	if runtime.GOOS == "windows" && strings.HasPrefix(abs, `\\`) {
		// UNC: \\server\share -> file://server/share
		return "file://" + encodeSegments(filepath.ToSlash(strings.TrimPrefix(abs, `\\`)))
	}

	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		// Windows drive path: C:/proj -> /C:/proj
		abs = "/" + abs
	}
	return "file://" + encodeSegments(abs)
}

// URIToPath converts a file:// URI back to a file system path. Inputs
// that do not parse as file URIs fall back to prefix stripping.
func URIToPath(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme != "file" {
		return stripScheme(uri)
	}

	if parsed.Host != "" {
		host, _ := url.PathUnescape(parsed.Host)
		path, _ := url.PathUnescape(parsed.Path)
		if runtime.GOOS == "windows" {
			return `\\` + host + strings.ReplaceAll(path, "/", `\`)
		}
		return host + path
	}

	path, err := url.PathUnescape(parsed.Path)
	if err != nil {
		path = parsed.Path
	}
	return filepath.FromSlash(trimDriveSlash(path))
}

func encodeSegments(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg != "" {
			segments[i] = url.PathEscape(seg)
		}
	}
	return strings.Join(segments, "/")
}

// trimDriveSlash turns /C:/proj into C:/proj.
func trimDriveSlash(path string) string {
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		return path[1:]
	}
	return path
}

func stripScheme(uri string) string {
	path := strings.TrimPrefix(uri, "file://")
	return filepath.FromSlash(trimDriveSlash(path))
}
