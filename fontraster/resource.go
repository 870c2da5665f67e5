package fontraster

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Resource identifies font data: a file path, an fs.FS entry, or bytes
// already in memory. Resolution is the caller's responsibility; Resource
// only reads what it is given.
type Resource struct {
	// Name is a label used in errors and logs. Defaults to the path.
	Name string

	// Path is a file path, read with os.ReadFile or from FS when set.
	Path string

	// FS, when non-nil, is the file system Path is read from.
	FS fs.FS

	// Data is in-memory font data. It takes precedence over Path.
	Data []byte

	// Index selects a face inside a font collection (TTC/OTC).
	Index int
}

// FromFile returns a Resource reading the font file at path.
// Files ending in .gz are decompressed transparently.
func FromFile(path string) Resource {
	return Resource{Name: path, Path: path}
}

// FromFS returns a Resource reading path from fsys, typically an embed.FS.
func FromFS(fsys fs.FS, path string) Resource {
	return Resource{Name: path, Path: path, FS: fsys}
}

// FromBytes returns a Resource over in-memory font data. The data is not
// copied and must not be modified while in use.
func FromBytes(name string, data []byte) Resource {
	return Resource{Name: name, Data: data}
}

// IsEmpty reports whether the resource names no font data at all.
func (r Resource) IsEmpty() bool {
	return len(r.Data) == 0 && r.Path == ""
}

// String returns the resource label.
func (r Resource) String() string {
	switch {
	case r.Name != "":
		return r.Name
	case r.Path != "":
		return r.Path
	case len(r.Data) > 0:
		return fmt.Sprintf("<%d bytes>", len(r.Data))
	default:
		return "<empty>"
	}
}

// Bytes returns the font data, reading and decompressing the file if needed.
func (r Resource) Bytes() ([]byte, error) {
	if len(r.Data) > 0 {
		return r.Data, nil
	}
	if r.Path == "" {
		return nil, ErrEmptyResource
	}

	var (
		data []byte
		err  error
	)
	if r.FS != nil {
		data, err = fs.ReadFile(r.FS, r.Path)
	} else {
		// #nosec G304 -- font path is provided by the caller
		data, err = os.ReadFile(r.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("fontraster: read %s: %w", r.Path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("fontraster: %s: %w", r.Path, ErrEmptyResource)
	}

	if strings.EqualFold(filepath.Ext(r.Path), ".gz") {
		return gunzip(r.Path, data)
	}
	return data, nil
}

func gunzip(name string, data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("fontraster: gunzip %s: %w", name, err)
	}
	defer func() {
		_ = zr.Close()
	}()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("fontraster: gunzip %s: %w", name, err)
	}
	return out, nil
}
