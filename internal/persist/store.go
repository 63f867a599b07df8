package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/snappy"
	"golang.org/x/crypto/sha3"
)

// Extension is the file extension of saved objects.
const Extension = ".wgz"

// magic identifies the file format and its version.
var magic = []byte("WGZ1")

const headerSize = 4 + 32

// Store errors.
var (
	// ErrNotFound is returned by Load when no object has the given name.
	// It wraps fs.ErrNotExist.
	ErrNotFound = fmt.Errorf("saved object not found: %w", fs.ErrNotExist)

	// ErrCorrupt is returned by Load when a file cannot be decoded.
	ErrCorrupt = errors.New("saved object is corrupt")

	// ErrInvalidName is returned for names that are empty or would
	// escape the store directory.
	ErrInvalidName = errors.New("invalid object name")
)

// Store reads and writes objects in one directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. The directory is created on
// the first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the base directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file that holds name.
func (s *Store) Path(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name+Extension), nil
}

// Save encodes obj as JSON and writes it under name, replacing any
// previous object with the same name.
func (s *Store) Save(name string, obj any) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(encode(data)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

// Load decodes the object saved under name into out.
func (s *Store) Load(name string, out any) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(path) //nolint:gosec // path is built from a validated name
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	data, err := decode(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	return nil
}

// Exists reports whether an object is saved under name.
func (s *Store) Exists(name string) bool {
	path, err := s.Path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// List returns the names of all saved objects in sorted order.
// A missing directory yields an empty list.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list store: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, Extension) {
			continue
		}
		names = append(names, strings.TrimSuffix(name, Extension))
	}
	sort.Strings(names)
	return names, nil
}

func validateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`), strings.ContainsRune(name, os.PathSeparator):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q must not start with a dot", ErrInvalidName, name)
	}
	return nil
}

// encode compresses data and prepends the header.
func encode(data []byte) []byte {
	payload := snappy.Encode(nil, data)
	sum := sha3.Sum256(payload)

	out := make([]byte, 0, headerSize+len(payload))
	out = append(out, magic...)
	out = append(out, sum[:]...)
	return append(out, payload...)
}

// decode checks the header and decompresses the payload.
func decode(raw []byte) ([]byte, error) {
	if len(raw) < headerSize || !bytes.Equal(raw[:len(magic)], magic) {
		return nil, errors.New("bad header")
	}

	payload := raw[headerSize:]
	sum := sha3.Sum256(payload)
	if !bytes.Equal(sum[:], raw[len(magic):headerSize]) {
		return nil, errors.New("checksum mismatch")
	}

	data, err := snappy.Decode(nil, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	return data, nil
}
