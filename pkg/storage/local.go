package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Local keeps files under a root directory.
type Local struct {
	root    string
	baseURL string
}

// NewLocal roots a disk at root, made absolute against the working directory.
func NewLocal(root, baseURL string) (*Local, error) {
	if root == "" {
		root = "storage"
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage/local: %w", err)
	}
	return &Local{root: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// abs resolves path inside root and refuses anything that escapes it.
func (d *Local) abs(path string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(path))
	full := filepath.Join(d.root, clean)
	if full == d.root {
		return "", fmt.Errorf("storage/local: invalid path %q", path)
	}
	return full, nil
}

func (d *Local) Put(_ context.Context, path string, r io.Reader, _ string) error {
	full, err := d.abs(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("storage/local: mkdir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("storage/local: create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("storage/local: write %s: %w", path, err)
	}
	return f.Close()
}

func (d *Local) Get(_ context.Context, path string) (io.ReadCloser, error) {
	full, err := d.abs(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("storage/local: open %s: %w", path, err)
	}
	return f, nil
}

func (d *Local) Exists(_ context.Context, path string) (bool, error) {
	full, err := d.abs(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (d *Local) Delete(_ context.Context, path string) error {
	full, err := d.abs(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage/local: delete %s: %w", path, err)
	}
	return nil
}

func (d *Local) URL(path string) string {
	return d.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(path), "/")
}

// Handler serves the disk's files read-only.
func (d *Local) Handler() http.Handler {
	return http.FileServer(http.Dir(d.root))
}
