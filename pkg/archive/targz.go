package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// TarEntry is a regular file of a tar.gz archive with its path flattened
// to the base name.
type TarEntry struct {
	Name string
	Path string
	Size int64
}

// TarGzScanner walks a gzip-compressed tar stream. Directories, entries whose
// base name is empty and non-regular entries (links, devices) are skipped.
// While positioned on an entry the scanner reads that entry's content.
//
// Nested paths are flattened, so two entries with the same base name in
// different directories map to the same name; callers writing them to disk
// keep whichever comes last.
type TarGzScanner struct {
	gz     *gzip.Reader
	tr     *tar.Reader
	onSkip SkipFunc
	cur    TarEntry
	err    error
}

// NewTarGzScanner reads the gzip header; an error means the stream is not gzip.
func NewTarGzScanner(r io.Reader, onSkip SkipFunc) (*TarGzScanner, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	return &TarGzScanner{gz: gz, tr: tar.NewReader(gz), onSkip: onSkip}, nil
}

// Next advances to the next regular file. It returns false at the end of the
// archive or on error; check Err afterwards.
func (s *TarGzScanner) Next() bool {
	if s.err != nil {
		return false
	}
	for {
		hdr, err := s.tr.Next()
		if errors.Is(err, io.EOF) {
			s.cur = TarEntry{}
			return false
		}
		if err != nil {
			s.err = fmt.Errorf("read tar header: %w", err)
			s.cur = TarEntry{}
			return false
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			s.skip(hdr.Name, SkipDirectory)
			continue
		case tar.TypeReg:
		default:
			s.skip(hdr.Name, SkipNotRegular)
			continue
		}
		if isDirName(hdr.Name) {
			s.skip(hdr.Name, SkipDirectory)
			continue
		}
		name := BaseName(hdr.Name)
		if name == "" || name == "." || name == ".." {
			s.skip(hdr.Name, SkipEmptyName)
			continue
		}
		s.cur = TarEntry{Name: name, Path: hdr.Name, Size: hdr.Size}
		return true
	}
}

// Entry returns the entry Next advanced to.
func (s *TarGzScanner) Entry() TarEntry {
	return s.cur
}

// Read reads the content of the current entry.
func (s *TarGzScanner) Read(p []byte) (int, error) {
	return s.tr.Read(p)
}

// Err returns the first error met while walking the archive.
func (s *TarGzScanner) Err() error {
	return s.err
}

// Close releases the gzip reader.
func (s *TarGzScanner) Close() error {
	return s.gz.Close()
}

func (s *TarGzScanner) skip(name string, reason SkipReason) {
	if s.onSkip != nil {
		s.onSkip(name, reason)
	}
}
