// Package snapshot reads and writes whole-object snapshot files. A snapshot
// is a plain-text JSON header line followed by a gzip-compressed JSON
// payload; the header carries a SHA-256 checksum of the compressed bytes so
// integrity can be verified without decompressing.
package snapshot

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// FormatVersion is the current snapshot format version.
const FormatVersion = 1

// MaxDecompressedSize is the maximum allowed size of a decompressed payload (4GB).
const MaxDecompressedSize = 4 << 30

// ErrChecksumMismatch is returned when the payload does not match the header checksum.
var ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

// ErrKindMismatch is returned when a snapshot holds a different kind of object
// than the caller asked for.
var ErrKindMismatch = errors.New("snapshot kind mismatch")

// Header is the first line of a snapshot file.
type Header struct {
	Version    int               `json:"version"`
	Kind       string            `json:"kind"`
	CreatedAt  time.Time         `json:"created_at"`
	Checksum   string            `json:"checksum"`
	Count      int               `json:"count"`
	Compressed bool              `json:"compressed"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Encode marshals payload to compressed bytes and returns them with their checksum.
func Encode(payload any) ([]byte, string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("marshaling payload: %w", err)
	}

	var compressed bytes.Buffer
	gzw, err := gzip.NewWriterLevel(&compressed, gzip.DefaultCompression)
	if err != nil {
		return nil, "", fmt.Errorf("creating gzip writer: %w", err)
	}
	if _, err := gzw.Write(raw); err != nil {
		return nil, "", fmt.Errorf("compressing payload: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing gzip writer: %w", err)
	}

	return compressed.Bytes(), checksum(compressed.Bytes()), nil
}

// Decode decompresses data and unmarshals it into payload.
func Decode(data []byte, payload any) error {
	gzr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gzr.Close()

	limited := io.LimitReader(gzr, MaxDecompressedSize+1)
	decompressed, err := io.ReadAll(limited)
	if err != nil {
		return fmt.Errorf("decompressing payload: %w", err)
	}
	if int64(len(decompressed)) > MaxDecompressedSize {
		return fmt.Errorf("decompressed payload exceeds maximum size of %d bytes", int64(MaxDecompressedSize))
	}

	if err := json.Unmarshal(decompressed, payload); err != nil {
		return fmt.Errorf("parsing payload: %w", err)
	}
	return nil
}

// Write writes payload to path as a snapshot of the given kind. count is a
// caller-defined object count recorded in the header.
func Write(path, kind string, count int, metadata map[string]string, payload any) (*Header, error) {
	compressed, sum, err := Encode(payload)
	if err != nil {
		return nil, err
	}

	header := &Header{
		Version:    FormatVersion,
		Kind:       kind,
		CreatedAt:  time.Now().UTC(),
		Checksum:   sum,
		Count:      count,
		Compressed: true,
		Metadata:   metadata,
	}
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("marshaling header: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	// Write to a temp file in the same directory so readers never observe a
	// half-written snapshot.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(headerBytes); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing header: %w", err)
	}
	if err := w.WriteByte('\n'); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing header newline: %w", err)
	}
	if _, err := w.Write(compressed); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing compressed payload: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("flushing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return nil, fmt.Errorf("renaming snapshot: %w", err)
	}

	return header, nil
}

// Read reads the snapshot at path, verifies its kind and checksum, and
// unmarshals the payload into payload.
func Read(path, kind string, payload any) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	header, err := readHeader(reader)
	if err != nil {
		return nil, err
	}
	if kind != "" && header.Kind != kind {
		return nil, fmt.Errorf("%s: expected %q, got %q: %w", path, kind, header.Kind, ErrKindMismatch)
	}

	compressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading compressed payload: %w", err)
	}
	if actual := checksum(compressed); actual != header.Checksum {
		return nil, fmt.Errorf("expected %s, got %s: %w", header.Checksum, actual, ErrChecksumMismatch)
	}

	if err := Decode(compressed, payload); err != nil {
		return nil, err
	}
	return header, nil
}

// ReadHeader reads only the header line from a snapshot file.
func ReadHeader(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return readHeader(bufio.NewReader(f))
}

// Verify checks the integrity of a snapshot file without decompressing it.
func Verify(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	header, err := readHeader(reader)
	if err != nil {
		return err
	}

	compressed, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("reading compressed payload: %w", err)
	}
	if actual := checksum(compressed); actual != header.Checksum {
		return fmt.Errorf("expected %s, got %s: %w", header.Checksum, actual, ErrChecksumMismatch)
	}
	return nil
}

func readHeader(reader *bufio.Reader) (*Header, error) {
	line, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("reading header line: %w", err)
	}

	var header Header
	if err := json.Unmarshal(bytes.TrimSpace(line), &header); err != nil {
		return nil, fmt.Errorf("parsing header: %w", err)
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", header.Version)
	}
	return &header, nil
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(hash[:])
}
