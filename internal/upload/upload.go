// Package upload stores product images on local disk.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxImageSize = 5 << 20

var ErrUnsupportedImage = errors.New("unsupported image file")

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type Store struct {
	Dir       string
	URLPrefix string
}

// Save writes the file as "<uuid>_<name>" under Dir and returns its public URL.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	name := cleanName(fh.Filename)
	if !allowedExt[strings.ToLower(filepath.Ext(name))] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, fh.Filename)
	}
	if fh.Size > MaxImageSize {
		return "", fmt.Errorf("%w: %q is larger than %d bytes", ErrUnsupportedImage, fh.Filename, MaxImageSize)
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}

	stored := uuid.NewString() + "_" + name
	dst, err := os.OpenFile(filepath.Join(s.Dir, stored), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, io.LimitReader(src, MaxImageSize+1)); err != nil {
		dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}

	return path.Join("/", s.URLPrefix, stored), nil
}

// Remove deletes a file previously returned by Save. URLs outside the store
// are ignored.
func (s *Store) Remove(url string) error {
	prefix := path.Join("/", s.URLPrefix) + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	name := path.Base(url)
	if name == "." || name == "/" || strings.Contains(strings.TrimPrefix(url, prefix), "/") {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// cleanName keeps the base name and replaces anything outside [A-Za-z0-9._-].
func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "image"
	}
	return out
}
