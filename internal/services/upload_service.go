package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"
)

// UploadURLPrefix is the first element of every stored image path. The
// router serves the upload directory under it.
const UploadURLPrefix = "uploads"

// UploadServiceProvider defines the interface for storing uploaded images.
type UploadServiceProvider interface {
	Store(files []*multipart.FileHeader) ([]string, error)
	Remove(paths []string)
}

// UploadService saves uploaded files into a directory.
type UploadService struct {
	dir string
	// uniqueNames prefixes every file with a UUID so uploads sharing a
	// client filename do not overwrite each other.
	uniqueNames bool
}

// NewUploadService creates an UploadService writing into dir, creating it
// if needed.
func NewUploadService(dir string, uniqueNames bool) (*UploadService, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &UploadService{dir: dir, uniqueNames: uniqueNames}, nil
}

// Dir returns the directory files are written to.
func (s *UploadService) Dir() string { return s.dir }

// Store writes each file and returns "uploads/<name>" paths in input order.
// Entries without a filename are skipped. If any write fails, files already
// written by this call are removed.
func (s *UploadService) Store(files []*multipart.FileHeader) ([]string, error) {
	paths := []string{}
	var written []string

	for _, fh := range files {
		if fh == nil || fh.Filename == "" {
			continue
		}

		name := s.storedName(fh.Filename)
		dst := filepath.Join(s.dir, name)
		if err := saveFile(fh, dst); err != nil {
			removeFiles(written)
			return nil, fmt.Errorf("save upload %q: %w", fh.Filename, err)
		}

		written = append(written, dst)
		paths = append(paths, path.Join(UploadURLPrefix, name))
	}
	return paths, nil
}

// Remove deletes files previously returned by Store. Paths outside the
// upload directory are ignored.
func (s *UploadService) Remove(paths []string) {
	var files []string
	for _, p := range paths {
		name, ok := strings.CutPrefix(p, UploadURLPrefix+"/")
		if !ok || name == "" || strings.HasPrefix(name, ".") || name != path.Base(name) {
			log.Warn().Str("path", p).Msg("Refusing to remove a path outside the upload directory")
			continue
		}
		files = append(files, filepath.Join(s.dir, name))
	}
	removeFiles(files)
}

func removeFiles(files []string) {
	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", f).Msg("Failed to remove uploaded file")
		}
	}
}

func (s *UploadService) storedName(clientName string) string {
	name := SecureFilename(clientName)
	switch {
	case name == "":
		return uuid.New().String()
	case s.uniqueNames:
		return uuid.New().String() + "_" + name
	default:
		return name
	}
}

func saveFile(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces a client-supplied filename to a flat ASCII name
// that is safe to join onto a directory. It may return "".
func SecureFilename(name string) string {
	// Decompose accents so "é" keeps its base letter, then drop non-ASCII.
	name = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, norm.NFKD.String(name))

	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}
