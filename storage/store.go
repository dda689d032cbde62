// Package storage keeps uploaded PDFs, saved signatures and edited output
// documents on disk.
package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/image/webp"

	"github.com/mgmeyers/pdfstamp/compositor"
	"github.com/mgmeyers/pdfstamp/pdfutils"
)

var ErrInvalidName = errors.New("invalid file name")

const (
	UploadsPrefix   = "/uploads/"
	SignaturePrefix = "/sign/"
)

var signatureExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

type Store struct {
	UploadDir string
	SignDir   string
	OutputDir string

	// Now is replaceable in tests.
	Now func() time.Time
}

func New(uploadDir, signDir, outputDir string) *Store {
	return &Store{
		UploadDir: uploadDir,
		SignDir:   signDir,
		OutputDir: outputDir,
		Now:       time.Now,
	}
}

func (s *Store) Init() error {
	for _, dir := range []string{s.UploadDir, s.SignDir, s.OutputDir} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}
	return nil
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) stampedName(name string) string {
	return fmt.Sprintf("%d-%s", s.now().UnixMilli(), pdfutils.SanitizeFileName(name))
}

// resolve joins a client supplied name onto dir, refusing anything that is
// not a plain base name.
func resolve(dir, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", errors.Wrapf(ErrInvalidName, "%q", name)
	}
	return filepath.Join(dir, name), nil
}

func writeFile(path string, r io.Reader) error {
	fd, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := io.Copy(fd, r); err != nil {
		fd.Close()
		os.Remove(path)
		return err
	}

	return fd.Close()
}

// SaveUpload stores an uploaded PDF and returns its stored name.
func (s *Store) SaveUpload(name string, r io.Reader) (string, error) {
	stored := s.stampedName(name)

	if err := writeFile(filepath.Join(s.UploadDir, stored), r); err != nil {
		return "", errors.Wrap(err, "saving upload")
	}

	return stored, nil
}

func (s *Store) UploadPath(name string) (string, error) {
	return resolve(s.UploadDir, name)
}

// ReadUpload returns the bytes of a stored upload. A missing upload is
// compositor.ErrSourceMissing.
func (s *Store) ReadUpload(name string) ([]byte, error) {
	path, err := s.UploadPath(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(compositor.ErrSourceMissing, name)
	}

	return data, errors.Wrap(err, "reading upload")
}

// SaveSignature stores a signature image. WebP images are converted to PNG
// because documents can only embed PNG and JPEG.
func (s *Store) SaveSignature(name string, r io.Reader) (string, error) {
	stored := s.stampedName(name)
	ext := strings.ToLower(filepath.Ext(stored))

	if !signatureExts[ext] {
		return "", errors.Wrapf(ErrInvalidName, "unsupported signature type %q", ext)
	}

	if ext == ".webp" {
		img, err := webp.Decode(r)
		if err != nil {
			return "", errors.Wrap(err, "decoding webp signature")
		}

		var buf bytes.Buffer
		if err := pdfutils.WriteImage(&buf, img, pdfutils.FormatPNG, 0); err != nil {
			return "", errors.Wrap(err, "encoding signature")
		}

		stored = strings.TrimSuffix(stored, filepath.Ext(stored)) + ".png"
		r = &buf
	}

	if err := writeFile(filepath.Join(s.SignDir, stored), r); err != nil {
		return "", errors.Wrap(err, "saving signature")
	}

	return stored, nil
}

// ListSignatures returns the URLs of stored signature images, oldest first.
func (s *Store) ListSignatures() ([]string, error) {
	entries, err := os.ReadDir(s.SignDir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "listing signatures")
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !signatureExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		names = append(names, entry.Name())
	}

	sort.Strings(names)

	urls := make([]string, 0, len(names))
	for _, name := range names {
		urls = append(urls, SignaturePrefix+name)
	}

	return urls, nil
}

func (s *Store) DeleteSignature(name string) error {
	return remove(s.SignDir, name)
}

// ResolveImage implements compositor.ImageResolver for signature URLs of the
// form /sign/<name>.
func (s *Store) ResolveImage(ref string) ([]byte, error) {
	if !strings.HasPrefix(ref, SignaturePrefix) {
		return nil, errors.Errorf("unknown image reference %q", ref)
	}

	path, err := resolve(s.SignDir, strings.TrimPrefix(ref, SignaturePrefix))
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	return data, errors.Wrap(err, "reading signature")
}

// SaveOutput stores an edited document produced by write and returns its
// name.
func (s *Store) SaveOutput(write func(io.Writer) error) (string, error) {
	name := fmt.Sprintf("Edited-%d-%s.pdf", s.now().UnixMilli(), uuid.NewString()[:8])
	path := filepath.Join(s.OutputDir, name)

	fd, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating output")
	}

	if err := write(fd); err != nil {
		fd.Close()
		os.Remove(path)
		return "", err
	}

	if err := fd.Close(); err != nil {
		return "", errors.Wrap(err, "closing output")
	}

	return name, nil
}

func (s *Store) DeleteOutput(name string) error {
	return remove(s.OutputDir, name)
}

func remove(dir, name string) error {
	path, err := resolve(dir, name)
	if err != nil {
		return err
	}

	return errors.Wrapf(os.Remove(path), "deleting %s", name)
}

// Cleanup deletes uploads last modified more than maxAge ago and returns the
// names it removed.
func (s *Store) Cleanup(maxAge time.Duration) ([]string, error) {
	entries, err := os.ReadDir(s.UploadDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "listing uploads")
	}

	now := s.now()
	deleted := []string{}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}

		if err := os.Remove(filepath.Join(s.UploadDir, entry.Name())); err != nil {
			return deleted, errors.Wrapf(err, "deleting %s", entry.Name())
		}

		deleted = append(deleted, entry.Name())
	}

	return deleted, nil
}
