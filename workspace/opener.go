package workspace

import (
	"os"
	"path/filepath"
	"strings"

	"bennypowers.dev/csslens/documents"
	"bennypowers.dev/csslens/internal/uriutil"
)

// Opener reads workspace files from disk as document snapshots.
type Opener struct{}

func NewOpener() *Opener { return &Opener{} }

// Open reads the file behind a file:// URI. Disk documents carry
// version 0; open editor buffers always shadow them.
func (*Opener) Open(uri string) (*documents.Document, error) {
	path := uriutil.URIToPath(uri)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return documents.NewDocument(uri, LanguageIDForPath(path), 0, string(data)), nil
}

// Size stats the file behind a URI without reading it.
func (*Opener) Size(uri string) (int64, error) {
	info, err := os.Stat(uriutil.URIToPath(uri))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// LanguageIDForPath maps a file extension to a language identifier.
func LanguageIDForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".scss":
		return "scss"
	case ".sass":
		return "sass"
	default:
		return "css"
	}
}
