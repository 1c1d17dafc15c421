package platformconfig

import (
	"log/slog"
	"sync"
)

// Manager is the platform-truth access point every resolver and scheduler
// call goes through. Get returns an immutable snapshot, Reload swaps in
// a freshly loaded one.
type Manager interface {
	Get() *Document
	Reload(fs FileSet) error
}

// RWMutexManager guards the current Document behind a sync.RWMutex and
// clones on every Get, so a caller that holds a snapshot across a long
// validation or scheduling pass never observes a concurrent Reload:
// readers see a consistent snapshot for the duration of one request.
type RWMutexManager struct {
	mu  sync.RWMutex
	doc *Document
	log *slog.Logger
}

// NewRWMutexManager builds a manager around an already-loaded document.
func NewRWMutexManager(doc *Document, log *slog.Logger) *RWMutexManager {
	if log == nil {
		log = slog.Default()
	}
	return &RWMutexManager{doc: doc, log: log}
}

// Get returns a cloned snapshot of the current document.
func (m *RWMutexManager) Get() *Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.Clone()
}

// Reload re-reads fs from disk and, on success, atomically swaps the
// current document. A parse failure leaves the previous document in place.
func (m *RWMutexManager) Reload(fs FileSet) error {
	doc, err := Load(fs)
	if err != nil {
		m.log.Warn("platformconfig: reload failed, keeping previous document", "error", err)
		return err
	}
	m.mu.Lock()
	prevHash := ""
	if m.doc != nil {
		prevHash = m.doc.ConfigHash
	}
	m.doc = doc
	m.mu.Unlock()
	m.log.Info("platformconfig: reloaded", "previous_hash", prevHash, "new_hash", doc.ConfigHash)
	return nil
}
