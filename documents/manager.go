package documents

import (
	"errors"
	"sync"

	"bennypowers.dev/csslens/internal/log"
)

// ErrNotOpen is returned when a change or close targets a URI that was
// never opened.
var ErrNotOpen = errors.New("document not open")

// Manager holds the current snapshot of every open document, keyed by
// URI. All methods are safe for concurrent use.
type Manager struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

func NewManager() *Manager {
	return &Manager{docs: make(map[string]*Document)}
}

// Open registers a document snapshot, replacing any previous snapshot
// for the same URI.
func (m *Manager) Open(uri, languageID string, version int32, content string) *Document {
	doc := NewDocument(uri, languageID, version, content)
	m.mu.Lock()
	m.docs[uri] = doc
	m.mu.Unlock()
	return doc
}

// Get returns the current snapshot for a URI.
func (m *Manager) Get(uri string) (*Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[uri]
	return doc, ok
}

// ApplyChanges applies incremental edits and stores the new snapshot.
// Stale updates whose version does not advance the document are
// ignored and the current snapshot is returned.
func (m *Manager) ApplyChanges(uri string, version int32, changes []ChangeEvent) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[uri]
	if !ok {
		return nil, ErrNotOpen
	}
	if version <= doc.version {
		log.Debug("ignoring stale update for %s: version %d <= %d", uri, version, doc.version)
		return doc, nil
	}
	next := doc.apply(version, changes)
	m.docs[uri] = next
	return next, nil
}

// Close removes a document. It reports whether one was open.
func (m *Manager) Close(uri string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[uri]; !ok {
		return false
	}
	delete(m.docs, uri)
	return true
}

// All returns the current snapshot of every open document.
func (m *Manager) All() []*Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make([]*Document, 0, len(m.docs))
	for _, doc := range m.docs {
		docs = append(docs, doc)
	}
	return docs
}

// Len reports the number of open documents.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
