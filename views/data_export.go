package views

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const defaultSheetBuffer = 256 * 1024

// SheetWriter streams one export sheet to a CSV file in the session
// directory. Rows go through a bufio.Writer; the file only sees large writes.
// A SheetWriter is used by one goroutine at a time.
type SheetWriter struct {
	sheet Sheet
	path  string
	file  *os.File
	buf   *bufio.Writer
	enc   *csv.Writer
	rows  uint64
}

// CreateSheet creates dir/<sheet>.csv, truncating an existing file, and
// writes the sheet header when header is set. bufSizeKB <= 0 selects 256 KB.
func CreateSheet(dir string, sheet Sheet, bufSizeKB int, header bool) (*SheetWriter, error) {
	path := filepath.Join(dir, sheet.FileName())
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv create %s: %w", path, err)
	}

	size := bufSizeKB * 1024
	if size <= 0 {
		size = defaultSheetBuffer
	}
	bw := bufio.NewWriterSize(f, size)
	w := &SheetWriter{sheet: sheet, path: path, file: f, buf: bw, enc: csv.NewWriter(bw)}

	if header {
		if err := w.enc.Write(sheet.Columns()); err != nil {
			f.Close()
			return nil, fmt.Errorf("csv write header %s: %w", path, err)
		}
	}
	return w, nil
}

// Write appends one data row.
func (w *SheetWriter) Write(row []string) error {
	if err := w.enc.Write(row); err != nil {
		return fmt.Errorf("csv write %s: %w", w.sheet, err)
	}
	w.rows++
	return nil
}

// WriteAll appends rows in order, stopping at the first failure.
func (w *SheetWriter) WriteAll(rows [][]string) error {
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Flush pushes encoded rows to the file.
func (w *SheetWriter) Flush() error {
	w.enc.Flush()
	if err := w.enc.Error(); err != nil {
		return fmt.Errorf("csv flush %s: %w", w.path, err)
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("csv flush %s: %w", w.path, err)
	}
	return nil
}

// Close flushes and closes the file. Both errors are reported.
func (w *SheetWriter) Close() error {
	return errors.Join(w.Flush(), w.file.Close())
}

// Path returns the file being written.
func (w *SheetWriter) Path() string { return w.path }

// Rows returns the number of data rows written, header excluded.
func (w *SheetWriter) Rows() uint64 { return w.rows }
