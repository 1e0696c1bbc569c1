package snapshot

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/warp/vip-ledger/generic"
)

// Load reads and decodes the snapshot at path.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &generic.LoadError{Path: path, Reason: "read", Err: err}
	}
	doc, err := Decode(bytes.NewReader(raw))
	if err != nil {
		var le *generic.LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// Save replaces the file at path with doc. The document is fully encoded in
// memory, written to a temporary file next to the target, synced, and renamed
// over it, so the target is either the old file or the complete new one.
// An existing file's permissions are kept.
func Save(path string, doc *Document) error {
	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		return &generic.WriteError{Path: path, Err: err}
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &generic.WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &generic.WriteError{Path: path, Err: err}
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &generic.WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &generic.WriteError{Path: path, Err: err}
	}
	return nil
}
