package datauri

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is a staged file that has not been read yet.
type File interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// LocalFile references a file on disk.
func LocalFile(path string) File { return localFile(path) }

type localFile string

func (f localFile) Name() string { return filepath.Base(string(f)) }

func (f localFile) Open() (io.ReadCloser, error) { return os.Open(string(f)) }

// InMemoryFile wraps data that is already loaded.
func InMemoryFile(name string, data []byte) File {
	return inMemoryFile{name: name, data: data}
}

type inMemoryFile struct {
	name string
	data []byte
}

func (f inMemoryFile) Name() string { return f.name }

func (f inMemoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// EncodeFile reads file fully and returns it as a data URI. Reading stops
// early if ctx is done.
func EncodeFile(ctx context.Context, file File) (string, error) {
	if file == nil {
		return "", nil
	}

	reader, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %q: %w", file.Name(), err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, contextReader{ctx: ctx, reader: reader}); err != nil {
		return "", fmt.Errorf("failed to read %q: %w", file.Name(), err)
	}

	return Encode(buf.Bytes()), nil
}

type contextReader struct {
	ctx    context.Context
	reader io.Reader
}

func (r contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.reader.Read(p)
}
