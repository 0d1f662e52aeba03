package table

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	errs "github.com/matzehuels/bookclusters/pkg/errors"
)

// Format is a table encoding.
type Format string

// Supported formats.
const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

// Compression is a stream compression applied on top of a format.
type Compression string

// Supported compressions.
const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gz"
	CompressionZstd Compression = "zst"
	CompressionLZ4  Compression = "lz4"
)

var compressionFromExt = map[string]Compression{
	".gz":  CompressionGzip,
	".zst": CompressionZstd,
	".lz4": CompressionLZ4,
}

var formatFromExt = map[string]Format{
	".csv":    FormatCSV,
	".json":   FormatJSON,
	".jsonl":  FormatJSONL,
	".ndjson": FormatJSONL,
}

// DetectFormat derives format and compression from a file name such as
// "edges.csv.zst".
func DetectFormat(path string) (Format, Compression, error) {
	name := strings.ToLower(filepath.Base(path))
	ext := filepath.Ext(name)

	comp := CompressionNone
	if c, ok := compressionFromExt[ext]; ok {
		comp = c
		name = strings.TrimSuffix(name, ext)
		ext = filepath.Ext(name)
	}

	f, ok := formatFromExt[ext]
	if !ok {
		return "", "", errs.New(errs.ErrCodeInvalidFormat, "unsupported table file %q (want .csv, .json, .jsonl with optional .gz, .zst or .lz4)", path)
	}
	return f, comp, nil
}

// ParseFormat parses a format name as used on the command line.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatJSONL, "ndjson":
		return FormatJSONL, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unknown format %q", s)
}

// NewReader wraps r with a decompressor for comp.
func NewReader(r io.Reader, comp Compression) (io.ReadCloser, error) {
	switch comp {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "unknown compression %q", comp)
}

// NewWriter wraps w with a compressor for comp. Closing the returned writer
// flushes the compressor but does not close w.
func NewWriter(w io.Writer, comp Compression) (io.WriteCloser, error) {
	switch comp {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, err
		}
		return enc, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "unknown compression %q", comp)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// openFile opens path and returns a decompressed reader plus its format.
func openFile(path string) (io.ReadCloser, Format, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, "", err
	}
	format, comp, err := DetectFormat(path)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, "", errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}

	r, err := NewReader(f, comp)
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("decompress %s: %w", path, err)
	}
	return &fileReader{ReadCloser: r, file: f}, format, nil
}

// fileReader closes the decompressor and then the underlying file.
type fileReader struct {
	io.ReadCloser
	file *os.File
}

func (r *fileReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}
