// Package archive walks ZIP and tar.gz archives and yields validated entries.
// Scanners only inspect and filter; writing entry content is left to callers.
package archive

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
)

// SkipReason explains why an archive entry was not yielded.
type SkipReason string

const (
	SkipDirectory   SkipReason = "directory"
	SkipEmptyName   SkipReason = "empty_name"
	SkipExtension   SkipReason = "extension"
	SkipTooLarge    SkipReason = "size"
	SkipNotRegular  SkipReason = "not_regular"
	SkipInvalidName SkipReason = "invalid_name"
)

// DefaultMaxFileSize caps a single ZIP entry when no limit is configured.
const DefaultMaxFileSize int64 = 10 << 20

// TokenFunc produces the collision-avoiding prefix for on-disk names.
type TokenFunc func() string

// SkipFunc observes entries a scanner passes over.
type SkipFunc func(name string, reason SkipReason)

// ZipOptions tunes a ZipScanner.
type ZipOptions struct {
	MaxFileSize int64
	NewToken    TokenFunc
	OnSkip      SkipFunc
}

// Entry is an accepted image entry of a ZIP archive.
type Entry struct {
	Name          string
	SanitizedName string
	UniqueName    string
	Extension     string
	Size          int64

	file *zip.File
}

// Open returns a reader over the decompressed entry content.
func (e Entry) Open() (io.ReadCloser, error) {
	if e.file == nil {
		return nil, fmt.Errorf("entry %q has no backing file", e.Name)
	}
	return e.file.Open()
}

// ZipScanner lazily yields accepted entries in archive order:
//
//	for s.Next() {
//		entry := s.Entry()
//	}
//
// Reset rewinds the scanner so the archive can be walked again.
type ZipScanner struct {
	files []*zip.File
	opts  ZipOptions
	pos   int
	cur   Entry
}

// NewZipScanner opens the ZIP central directory. The error is non-nil only
// when the archive itself cannot be read.
func NewZipScanner(r io.ReaderAt, size int64, opts ZipOptions) (*ZipScanner, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open zip archive: %w", err)
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.NewToken == nil {
		opts.NewToken = uuid.NewString
	}
	return &ZipScanner{files: zr.File, opts: opts}, nil
}

// Len is the number of entries in the archive, accepted or not.
func (s *ZipScanner) Len() int {
	return len(s.files)
}

// Next advances to the next accepted entry.
func (s *ZipScanner) Next() bool {
	for s.pos < len(s.files) {
		f := s.files[s.pos]
		s.pos++
		if entry, ok := s.accept(f); ok {
			s.cur = entry
			return true
		}
	}
	s.cur = Entry{}
	return false
}

// Entry returns the entry Next advanced to.
func (s *ZipScanner) Entry() Entry {
	return s.cur
}

// Reset rewinds to the first entry.
func (s *ZipScanner) Reset() {
	s.pos = 0
	s.cur = Entry{}
}

func (s *ZipScanner) accept(f *zip.File) (Entry, bool) {
	if f.FileInfo().IsDir() || isDirName(f.Name) {
		s.skip(f.Name, SkipDirectory)
		return Entry{}, false
	}
	base := BaseName(f.Name)
	if base == "" {
		s.skip(f.Name, SkipEmptyName)
		return Entry{}, false
	}
	ext := Extension(base)
	if !IsImageExtension(ext) {
		s.skip(f.Name, SkipExtension)
		return Entry{}, false
	}
	if f.UncompressedSize64 > uint64(s.opts.MaxFileSize) {
		s.skip(f.Name, SkipTooLarge)
		return Entry{}, false
	}
	sanitized := SanitizeFileName(base)
	if sanitized == "" {
		s.skip(f.Name, SkipInvalidName)
		return Entry{}, false
	}
	return Entry{
		Name:          f.Name,
		SanitizedName: sanitized,
		UniqueName:    s.opts.NewToken() + "_" + sanitized,
		Extension:     ext,
		Size:          int64(f.UncompressedSize64),
		file:          f,
	}, true
}

func (s *ZipScanner) skip(name string, reason SkipReason) {
	if s.opts.OnSkip != nil {
		s.opts.OnSkip(name, reason)
	}
}

func isDirName(name string) bool {
	return len(name) > 0 && (name[len(name)-1] == '/' || name[len(name)-1] == '\\')
}
