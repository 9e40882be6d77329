// Package documents tracks the text and version of open documents and
// applies incremental edits to them.
package documents

import (
	"strings"

	"bennypowers.dev/csslens/parser/common"
)

// Document is an immutable snapshot of one open document. Applying a
// change produces a new snapshot; callers holding an old one keep a
// consistent view.
type Document struct {
	uri        string
	languageID string
	version    int32
	content    string
	lines      []string
}

// NewDocument builds a snapshot from raw content. Line endings are
// normalized to LF.
func NewDocument(uri, languageID string, version int32, content string) *Document {
	content = common.NormalizeLineEndings(content)
	return &Document{
		uri:        uri,
		languageID: languageID,
		version:    version,
		content:    content,
		lines:      strings.Split(content, "\n"),
	}
}

func (d *Document) URI() string        { return d.uri }
func (d *Document) LanguageID() string { return d.languageID }
func (d *Document) Version() int32     { return d.version }
func (d *Document) Content() string    { return d.content }

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int { return len(d.lines) }

// Line returns the text of a single line without its terminator, or
// the empty string for an out of range index.
func (d *Document) Line(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// ChangeEvent is one incremental edit. A nil Range replaces the whole
// document. Range columns count UTF-16 code units, matching what
// editors send; they are converted to byte offsets internally.
type ChangeEvent struct {
	Range *common.Range
	Text  string
}

// apply produces the next snapshot for a sequence of edits.
func (d *Document) apply(version int32, changes []ChangeEvent) *Document {
	content := d.content
	for _, change := range changes {
		if change.Range == nil {
			content = common.NormalizeLineEndings(change.Text)
			continue
		}
		start := offsetAt(content, change.Range.Start)
		end := offsetAt(content, change.Range.End)
		if end < start {
			start, end = end, start
		}
		content = content[:start] + common.NormalizeLineEndings(change.Text) + content[end:]
	}
	return NewDocument(d.uri, d.languageID, version, content)
}

// offsetAt converts a line and UTF-16 column to a byte offset,
// clamping positions past the end of a line or of the document.
func offsetAt(content string, pos common.Position) int {
	offset := 0
	for line := 0; line < pos.Line; line++ {
		next := strings.IndexByte(content[offset:], '\n')
		if next < 0 {
			return len(content)
		}
		offset += next + 1
	}
	units := 0
	for i, r := range content[offset:] {
		if r == '\n' || units >= pos.Column {
			return offset + i
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	return len(content)
}
