// Package loader streams wordlists in bounded batches.
//
// Each non-blank line of the source is one candidate, taken verbatim apart
// from its line terminator. Commas, quotes and other punctuation inside a
// line are ordinary data. Bytes that cannot be decoded are substituted
// rather than aborting the read.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/bimmerbailey/refinery/internal/config"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrSourceNotFound reports a source path that does not resolve to a
	// readable file.
	ErrSourceNotFound = errors.New("source not found")

	// ErrIOFailure reports any other read or write failure.
	ErrIOFailure = errors.New("i/o failure")
)

// Batch is an ordered group of candidates read from a source.
type Batch []config.Record

// Loader yields batches of candidates from a single source. It is one-pass
// and cannot be restarted.
type Loader struct {
	path      string
	batchSize int
	file      *os.File
	reader    *bufio.Reader
	line      int
	done      bool
}

// Open opens path for batched reading. The encoding name is resolved with
// the WHATWG index ("utf-8", "latin1", "windows-1252", ...); an empty name
// means UTF-8.
func Open(path string, batchSize int, encodingName string) (*Loader, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if stat.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, path)
	}

	return &Loader{
		path:      path,
		batchSize: batchSize,
		file:      f,
		reader:    bufio.NewReaderSize(transform.NewReader(f, enc.NewDecoder()), 64*1024),
	}, nil
}

// LookupEncoding resolves an encoding name. UTF-8 decoding drops a leading
// byte order mark and replaces malformed sequences with U+FFFD.
func LookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return unicode.UTF8BOM, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	if enc == unicode.UTF8 {
		return unicode.UTF8BOM, nil
	}
	return enc, nil
}

// Next returns the next batch of at most batchSize candidates. It returns
// io.EOF once the source is exhausted; an empty batch is never returned.
func (l *Loader) Next() (Batch, error) {
	if l.done {
		return nil, io.EOF
	}

	batch := make(Batch, 0, min(l.batchSize, 4096))
	for len(batch) < l.batchSize {
		text, err := l.reader.ReadString('\n')
		if len(text) > 0 {
			l.line++
			text = strings.TrimRight(text, "\r\n")
			if strings.TrimSpace(text) != "" {
				batch = append(batch, config.Record{Text: text, Line: l.line})
			}
		}
		if err == io.EOF {
			l.done = true
			break
		}
		if err != nil {
			l.done = true
			return nil, fmt.Errorf("%w: reading %s: %v", ErrIOFailure, l.path, err)
		}
	}

	if len(batch) == 0 {
		return nil, io.EOF
	}
	return batch, nil
}

// Close releases the underlying file.
func (l *Loader) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Stream reads every batch of path and hands it to fn, stopping at the
// first error.
func Stream(path string, batchSize int, encodingName string, fn func(Batch) error) error {
	l, err := Open(path, batchSize, encodingName)
	if err != nil {
		return err
	}
	defer l.Close()

	for {
		batch, err := l.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(batch); err != nil {
			return err
		}
	}
}
