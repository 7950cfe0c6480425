// Package store persists the flat, keyed record map that every Lodestar flow
// reads and writes (.lodestar/state/records.json). Values are arbitrary JSON;
// keys are logical signal names. The file is re-read on every access and
// written whole on every mutation: last write wins per key, and two
// concurrent processes are not coordinated. That consistency gap is accepted
// — the signals carried here are per-user bookkeeping, not shared ledgers.
//
// Callers never touch raw keys. The typed accessors in records.go are the
// only supported surface; a value that fails to decode yields that signal's
// documented default rather than an error.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Map is the raw persisted shape: logical key -> JSON value.
type Map map[string]json.RawMessage

// Records is the typed repository over the persisted map.
type Records struct {
	path string
}

// Open returns a repository backed by the given file. The file need not
// exist yet; it is created on first write.
func Open(path string) *Records {
	return &Records{path: path}
}

// Path returns the backing file location.
func (r *Records) Path() string {
	return r.path
}

// load reads the full map from disk. A missing or unreadable file is an
// empty map; a corrupt file is also an empty map, because a broken store
// must degrade to "nothing recorded yet" rather than wedge every flow.
func (r *Records) load() Map {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return Map{}
	}
	var m Map
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return Map{}
	}
	return m
}

// save writes the full map back to disk.
func (r *Records) save(m Map) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, append(encoded, '\n'), 0o644)
}

// get decodes the value at key into out, reporting whether a well-formed
// value was present.
func (r *Records) get(key string, out any) bool {
	raw, ok := r.load()[key]
	if !ok || len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// set encodes value under key and persists the map.
func (r *Records) set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m := r.load()
	m[key] = raw
	return r.save(m)
}

// Reset removes the backing file entirely (used when starting fresh).
func (r *Records) Reset() error {
	err := os.Remove(r.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
