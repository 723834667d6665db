package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrMissingColumn is returned when a configured column is not in the header.
var ErrMissingColumn = errors.New("column not found in header")

// ErrInvalidEncoding is returned when the snapshot is not valid UTF-8.
var ErrInvalidEncoding = errors.New("snapshot is not valid UTF-8")

// Row is one data row of the snapshot. Fields are raw cell text; a cell that
// the row does not have is empty.
type Row struct {
	Name     string
	Calories string
	// Line is the 1-based line of the row in the source.
	Line int
}

// Options controls how a snapshot is parsed.
type Options struct {
	SkipRows      int
	NameColumn    string
	CalorieColumn string
}

// OptionsFromConfig derives parse options from the source configuration.
func OptionsFromConfig(cfg Config) Options {
	return Options{
		SkipRows:      cfg.SkipRows,
		NameColumn:    cfg.NameColumn,
		CalorieColumn: cfg.CalorieColumn,
	}
}

// Load opens the configured snapshot and parses it completely.
func Load(ctx context.Context, cfg Config, client *http.Client) ([]Row, error) {
	location := cfg.Location()
	if location == "" {
		return nil, fmt.Errorf("no snapshot source configured")
	}

	if cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	rc, err := Open(ctx, location, client)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	rows, err := Parse(rc, OptionsFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", location, err)
	}

	return rows, nil
}

// Open returns a reader for a local path or an HTTP(S) URL.
func Open(ctx context.Context, location string, client *http.Client) (io.ReadCloser, error) {
	if !isURL(location) {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot: %w", err)
		}
		return f, nil
	}

	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch snapshot: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return resp.Body, nil
}

// Parse reads a CSV snapshot. Leading rows are skipped, the next row is the
// header, and every following row becomes a Row. Input that is not UTF-8
// is rejected with ErrInvalidEncoding.
func Parse(r io.Reader, opts Options) ([]Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if err := validateUTF8(raw); err != nil {
		return nil, err
	}

	decoded := transform.NewReader(bytes.NewReader(raw), unicode.UTF8BOM.NewDecoder())

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("snapshot ended before header row")
			}
			return nil, fmt.Errorf("failed to skip row %d: %w", i+1, err)
		}
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("snapshot ended before header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	nameIdx, err := columnIndex(header, opts.NameColumn)
	if err != nil {
		return nil, err
	}
	calIdx, err := columnIndex(header, opts.CalorieColumn)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, Row{
			Name:     cell(record, nameIdx),
			Calories: cell(record, calIdx),
			Line:     line,
		})
	}

	return rows, nil
}

// validateUTF8 reports the line of the first invalid byte sequence. The
// BOM decoder would otherwise replace it with U+FFFD.
func validateUTF8(raw []byte) error {
	for off := 0; off < len(raw); {
		r, size := utf8.DecodeRune(raw[off:])
		if r == utf8.RuneError && size == 1 {
			line := 1 + bytes.Count(raw[:off], []byte("\n"))
			return fmt.Errorf("%w: invalid byte 0x%02x at line %d", ErrInvalidEncoding, raw[off], line)
		}
		off += size
	}
	return nil
}

func columnIndex(header []string, name string) (int, error) {
	want := strings.TrimSpace(name)
	for i, h := range header {
		if strings.TrimSpace(h) == want {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrMissingColumn, name)
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
