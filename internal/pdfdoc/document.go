package pdfdoc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// ErrNoPages is returned when a document opens cleanly but contains no pages.
var ErrNoPages = errors.New("pdf has no pages")

// Document is an opened PDF. It owns the underlying file handle and the
// per-page image object table; callers must Close it on every exit path.
type Document struct {
	path   string
	size   int64
	file   *os.File
	reader *pdf.Reader

	// images[pageNr] maps object number -> image object for that page.
	// Populated best-effort at open time; a failed image scan leaves the
	// map empty rather than failing the whole document.
	images map[int]map[int]ImageObject
}

// Metadata mirrors the PDF Info dictionary fields worth surfacing.
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
}

// Open parses the PDF at path. The returned document holds an open file
// handle until Close is called.
func Open(path string) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	if r.NumPage() == 0 {
		f.Close()
		return nil, ErrNoPages
	}

	var size int64
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}

	d := &Document{path: path, size: size, file: f, reader: r}
	d.images, err = scanImages(path, r.NumPage())
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("image scan failed; continuing without images")
		d.images = map[int]map[int]ImageObject{}
	}
	return d, nil
}

// Close releases the underlying file. Safe to call more than once.
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

func (d *Document) Path() string { return d.path }

// Filename returns the base name of the source file.
func (d *Document) Filename() string { return filepath.Base(d.path) }

// SizeMB returns the source file size in megabytes.
func (d *Document) SizeMB() float64 { return float64(d.size) / (1024 * 1024) }

func (d *Document) NumPages() int { return d.reader.NumPage() }

// Page returns a read-only view of the 1-based page n.
func (d *Document) Page(n int) (*Page, error) {
	if n < 1 || n > d.reader.NumPage() {
		return nil, fmt.Errorf("page %d out of range 1..%d", n, d.reader.NumPage())
	}
	p := d.reader.Page(n)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d is unusable", n)
	}
	return &Page{doc: d, Number: n, page: p}, nil
}

// Metadata reads the trailer Info dictionary. Missing or malformed entries
// yield empty fields.
func (d *Document) Metadata() Metadata {
	var m Metadata
	defer func() {
		// Trailer walking panics on some malformed documents; metadata is
		// never worth failing a conversion over.
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Msg("metadata read failed")
		}
	}()
	info := d.reader.Trailer().Key("Info")
	if info.Kind() != pdf.Dict {
		return m
	}
	m.Title = infoString(info, "Title")
	m.Author = infoString(info, "Author")
	m.Subject = infoString(info, "Subject")
	m.Creator = infoString(info, "Creator")
	m.Producer = infoString(info, "Producer")
	return m
}

func infoString(info pdf.Value, key string) string {
	v := info.Key(key)
	if v.Kind() != pdf.String {
		return ""
	}
	return strings.TrimSpace(v.Text())
}
