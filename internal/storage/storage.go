package storage

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tadapt/internal/domain"
)

// ErrReportWrite marks failures to create or write the report destination.
var ErrReportWrite = errors.New("report write failed")

// ErrUnknownFormat is returned for report files that are neither XML nor JSON.
var ErrUnknownFormat = errors.New("unknown report format")

// Format is a report serialisation.
type Format string

const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
)

// ParseFormat validates a configured format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatXML:
		return FormatXML, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Encoder serialises a run report.
type Encoder interface {
	Encode(w io.Writer, report *domain.RunReport) error
}

// EncoderFor returns the encoder of a format.
func EncoderFor(f Format) (Encoder, error) {
	switch f {
	case FormatXML, "":
		return XMLEncoder{}, nil
	case FormatJSON:
		return JSONEncoder{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Storage persists run reports and loads the last one back.
type Storage interface {
	Open() (*Artifact, error)
	Load() (*domain.RunReport, error)
	Path() string
}

// FileStorage keeps the report in a single file at a well-known path.
type FileStorage struct {
	path    string
	encoder Encoder
}

// NewFileStorage returns a Storage writing format to path.
func NewFileStorage(path string, format Format) (*FileStorage, error) {
	enc, err := EncoderFor(format)
	if err != nil {
		return nil, err
	}
	return &FileStorage{path: path, encoder: enc}, nil
}

// Path returns the report destination.
func (s *FileStorage) Path() string {
	return s.path
}

// Open acquires the report destination. Callers must Close the artifact on
// every exit path.
func (s *FileStorage) Open() (*Artifact, error) {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: create output dir: %v", ErrReportWrite, err)
		}
	}
	f, err := os.Create(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReportWrite, err)
	}
	return &Artifact{path: s.path, file: f, encoder: s.encoder}, nil
}

// Load reads the report currently stored at the destination.
func (s *FileStorage) Load() (*domain.RunReport, error) {
	return Load(s.path)
}

// Artifact is an open report destination.
type Artifact struct {
	path    string
	file    *os.File
	encoder Encoder
}

// Write serialises report into the artifact, replacing anything written
// before, and flushes it to disk.
func (a *Artifact) Write(report *domain.RunReport) error {
	if a.file == nil {
		return fmt.Errorf("%w: %s is closed", ErrReportWrite, a.path)
	}
	if err := a.file.Truncate(0); err != nil {
		return fmt.Errorf("%w: %v", ErrReportWrite, err)
	}
	if _, err := a.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", ErrReportWrite, err)
	}

	bw := bufio.NewWriter(a.file)
	if err := a.encoder.Encode(bw, report); err != nil {
		return fmt.Errorf("%w: encode: %v", ErrReportWrite, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrReportWrite, err)
	}
	if err := a.file.Sync(); err != nil {
		return fmt.Errorf("%w: %v", ErrReportWrite, err)
	}
	return nil
}

// Close releases the destination. It is safe to call more than once.
func (a *Artifact) Close() error {
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	if err != nil {
		return fmt.Errorf("%w: close: %v", ErrReportWrite, err)
	}
	return nil
}

// Path returns the artifact location.
func (a *Artifact) Path() string {
	return a.path
}

// Load reads a report file, detecting XML or JSON from its content.
func Load(path string) (*domain.RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	return Decode(data)
}

// Decode parses a serialised report.
func Decode(data []byte) (*domain.RunReport, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty report", ErrUnknownFormat)
	}
	switch trimmed[0] {
	case '<':
		return decodeXML(trimmed)
	case '{':
		return decodeJSON(trimmed)
	}
	return nil, ErrUnknownFormat
}
