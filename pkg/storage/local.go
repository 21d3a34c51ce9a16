package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	ErrInvalidName  = errors.New("invalid file name")
	ErrFileNotFound = errors.New("file not found")
)

const (
	maxNameAttempts = 1000

	// Stored names stay under 255 bytes with a "_999" suffix added.
	maxBaseBytes = 200
	maxExtBytes  = 16
)

var (
	unsafeBaseChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	unsafeExtChars  = regexp.MustCompile(`[^a-z0-9]+`)
)

// FileStorage stores uploaded attachment payloads under flat, unique names.
type FileStorage interface {
	// Save writes r under a sanitized, collision-free variant of name and
	// returns the stored name and the number of bytes written.
	Save(name string, r io.Reader) (string, int64, error)
	// Remove deletes a stored file. A missing file is not an error.
	Remove(name string) error
	// Resolve returns the absolute path for a stored name, refusing names
	// that would point outside the storage directory.
	Resolve(name string) (string, error)
	// Locate is Resolve for a file that must exist. It returns
	// ErrFileNotFound otherwise.
	Locate(name string) (string, error)
}

type localStorage struct {
	dir string
}

// NewLocalStorage creates the upload directory if needed.
func NewLocalStorage(dir string) (FileStorage, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &localStorage{dir: abs}, nil
}

// SafeName strips directory components and anything outside
// [A-Za-z0-9_-] from a client supplied file name and caps its length. The
// extension is kept lowercased.
func SafeName(name string) string {
	base, ext := splitSafe(name)
	return base + ext
}

func splitSafe(name string) (string, string) {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	ext = unsafeExtChars.ReplaceAllString(strings.ToLower(strings.TrimPrefix(ext, ".")), "")
	if len(ext) > maxExtBytes {
		ext = ext[:maxExtBytes]
	}
	if ext != "" {
		ext = "." + ext
	}

	base = unsafeBaseChars.ReplaceAllString(base, "_")
	if len(base) > maxBaseBytes {
		base = base[:maxBaseBytes]
	}
	base = strings.Trim(base, "_-")
	if base == "" {
		base = "file"
	}

	return base, ext
}

func (s *localStorage) Save(name string, r io.Reader) (string, int64, error) {
	base, ext := splitSafe(name)

	for i := 0; i < maxNameAttempts; i++ {
		candidate := base + ext
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
		}

		fullPath := filepath.Join(s.dir, candidate)
		f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", 0, fmt.Errorf("failed to reserve %s: %w", candidate, err)
		}

		n, err := io.Copy(f, r)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(fullPath)
			return "", 0, fmt.Errorf("failed to write %s: %w", candidate, err)
		}

		return candidate, n, nil
	}

	return "", 0, fmt.Errorf("no free file name for %s%s after %d attempts", base, ext, maxNameAttempts)
}

func (s *localStorage) Remove(name string) error {
	fullPath, err := s.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

func (s *localStorage) Resolve(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", ErrInvalidName
	}

	fullPath := filepath.Join(s.dir, name)
	rel, err := filepath.Rel(s.dir, fullPath)
	if err != nil || rel != name {
		return "", ErrInvalidName
	}

	return fullPath, nil
}

func (s *localStorage) Locate(name string) (string, error) {
	fullPath, err := s.Resolve(name)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(fullPath)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
		return "", ErrFileNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", name, err)
	}
	return fullPath, nil
}
