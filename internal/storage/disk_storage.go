// Package storage keeps uploaded bytes in a single flat directory. Every blob gets a fresh,
// timestamp-prefixed key, so concurrent uploads never write to the same file.
package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// ErrInvalidKey is returned for keys that would leave the upload directory.
var ErrInvalidKey = errors.New("invalid storage key")

// BlobStorage stores and removes uploaded bytes.
type BlobStorage interface {
	// Save writes r under a new unique key and returns the key and the number of bytes written.
	Save(originalName string, r io.Reader) (key string, size int64, err error)
	// Remove deletes the blob. A missing blob is not an error.
	Remove(key string) error
	// PublicURL is where the static route serves the blob.
	PublicURL(key string) string
	// FileSystem exposes the upload directory for the static route.
	FileSystem() http.FileSystem
}

// DiskStorage implements BlobStorage on an afero filesystem rooted at dir.
type DiskStorage struct {
	fs         afero.Fs
	dir        string
	publicBase string
	now        func() time.Time
}

// NewDiskStorage creates the upload directory if needed. publicBase is the URL prefix of
// the static route, for example "https://drive.example.com/uploads".
func NewDiskStorage(fs afero.Fs, dir, publicBase string) (*DiskStorage, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	log.Infof("Storing uploads in %s", dir)
	return &DiskStorage{
		fs:         fs,
		dir:        dir,
		publicBase: strings.TrimRight(publicBase, "/"),
		now:        time.Now,
	}, nil
}

func (ds *DiskStorage) Save(originalName string, r io.Reader) (string, int64, error) {
	key := ds.newKey(originalName)
	target := filepath.Join(ds.dir, key)

	// O_EXCL so an existing blob is never overwritten
	file, err := ds.fs.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create blob: %w", err)
	}

	size, err := io.Copy(file, r)
	if err != nil {
		_ = file.Close()
		_ = ds.fs.Remove(target)
		return "", 0, fmt.Errorf("write blob: %w", err)
	}

	if err := file.Sync(); err != nil {
		_ = file.Close()
		_ = ds.fs.Remove(target)
		return "", 0, fmt.Errorf("sync blob: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = ds.fs.Remove(target)
		return "", 0, fmt.Errorf("close blob: %w", err)
	}

	return key, size, nil
}

func (ds *DiskStorage) Remove(key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}

	err := ds.fs.Remove(filepath.Join(ds.dir, key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (ds *DiskStorage) PublicURL(key string) string {
	return ds.publicBase + "/" + key
}

func (ds *DiskStorage) FileSystem() http.FileSystem {
	return afero.NewHttpFs(ds.fs).Dir(ds.dir)
}

// newKey builds "<unix millis>-<uuid><ext>". Only the extension of the untrusted
// client name is kept, and only when it is short and plain.
func (ds *DiskStorage) newKey(originalName string) string {
	return fmt.Sprintf("%d-%s%s", ds.now().UnixMilli(), uuid.NewString(), safeExtension(originalName))
}

func safeExtension(name string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(name, `\`, "/")))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

func validKey(key string) bool {
	return key != "" && key != "." && key != ".." && !strings.ContainsAny(key, `/\`)
}
