// Package store persists the session engine's state to a binary,
// length-prefixed file (spec.md §4.5, §6.4).
package store

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jaydenbeard/silentrelay-crypto/internal/session"
)

// FileStore implements session.Persister against a single file on
// disk. Every SaveAll rewrites the entire file atomically: the new
// image is written to a uuid-tagged temp file in the same directory,
// then renamed over the destination.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file need not exist
// yet; LoadAll returns an empty session set in that case.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// SaveAll rewrites the store file with the full session set
// (spec.md §4.5: "the entire map is rewritten atomically").
func (fs *FileStore) SaveAll(sessions map[string]*session.Session) error {
	dir := filepath.Dir(fs.path)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(fs.path), uuid.New().String()))

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := writeAll(w, sessions); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flush temp store file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp store file: %w", err)
	}

	if err := os.Rename(tmpPath, fs.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// LoadAll reads the full session set back. A missing file is not an
// error: it means no sessions have been saved yet.
func (fs *FileStore) LoadAll() (map[string]*session.Session, error) {
	f, err := os.Open(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]*session.Session), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open store file: %w", err)
	}
	defer f.Close()

	return readAll(bufio.NewReader(f))
}

func writeAll(w io.Writer, sessions map[string]*session.Session) error {
	if err := writeUint32(w, uint32(len(sessions))); err != nil {
		return err
	}
	for id, s := range sessions {
		data, err := marshalSession(s)
		if err != nil {
			return fmt.Errorf("marshal session %q: %w", id, err)
		}
		if err := writeLenPrefixed(w, []byte(id)); err != nil {
			return err
		}
		if err := writeLenPrefixed(w, data); err != nil {
			return err
		}
	}
	return nil
}

func readAll(r io.Reader) (map[string]*session.Session, error) {
	count, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read session count: %w", err)
	}

	sessions := make(map[string]*session.Session, count)
	for i := uint32(0); i < count; i++ {
		idBytes, err := readLenPrefixed(r)
		if err != nil {
			return nil, fmt.Errorf("read session id %d: %w", i, err)
		}
		data, err := readLenPrefixed(r)
		if err != nil {
			return nil, fmt.Errorf("read session data %d: %w", i, err)
		}
		s, err := unmarshalSession(string(idBytes), data)
		if err != nil {
			return nil, fmt.Errorf("unmarshal session %q: %w", idBytes, err)
		}
		sessions[string(idBytes)] = s
	}
	return sessions, nil
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeLenPrefixed(w io.Writer, b []byte) error {
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readLenPrefixed(r io.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
