package services

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Statement uploads are CSV or XLSX. PDF and OFX statements are advertised in
// the UI but not implemented on this intake path.
var statementExtensions = map[string]bool{
	".csv":  true,
	".txt":  true,
	".xlsx": true,
	".xls":  true,
}

var statementContentTypes = map[string]bool{
	"text/csv":                 true,
	"text/plain":               true,
	"application/octet-stream": true, // browsers often send this for CSV
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

// xlsxMagic is the ZIP signature; an XLSX file is a ZIP container.
var xlsxMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// FileValidator screens uploaded statement files before parsing: name
// hygiene, size limit and a cheap content sniff.
type FileValidator struct {
	maxSizeBytes int64
}

// NewFileValidator creates a validator with the given size ceiling.
func NewFileValidator(maxSizeBytes int64) *FileValidator {
	return &FileValidator{maxSizeBytes: maxSizeBytes}
}

// ValidateUpload checks an uploaded statement. data is the full file body,
// already in memory before parsing runs.
func (v *FileValidator) ValidateUpload(data []byte, filename, contentType string) error {
	if err := v.ValidateFilename(filename); err != nil {
		return err
	}
	if contentType != "" && !statementContentTypes[contentType] {
		return fmt.Errorf("unsupported content type: %s", contentType)
	}
	if err := v.ValidateSize(int64(len(data))); err != nil {
		return err
	}
	return v.validateContent(data, filename)
}

// ValidateFilename rejects empty, traversal-prone and unsupported names.
func (v *FileValidator) ValidateFilename(filename string) error {
	if filename == "" {
		return errors.New("filename cannot be empty")
	}
	if strings.Contains(filename, "..") || strings.Contains(filename, "\x00") {
		return errors.New("invalid filename")
	}
	if strings.HasPrefix(filename, "/") || strings.HasPrefix(filename, "\\") {
		return errors.New("filename cannot be an absolute path")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !statementExtensions[ext] {
		return fmt.Errorf("unsupported file extension: %s", ext)
	}
	return nil
}

// ValidateSize enforces the upload size ceiling.
func (v *FileValidator) ValidateSize(size int64) error {
	if size == 0 {
		return errors.New("empty file")
	}
	if size > v.maxSizeBytes {
		return fmt.Errorf("file size (%d bytes) exceeds maximum allowed size (%d bytes)", size, v.maxSizeBytes)
	}
	return nil
}

// validateContent sniffs the body so a renamed binary does not reach the
// parser: spreadsheets must carry the ZIP signature, text statements must
// look like text.
func (v *FileValidator) validateContent(data []byte, filename string) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		if !bytes.HasPrefix(data, xlsxMagic) {
			return errors.New("file content does not match spreadsheet format")
		}
	default:
		if !looksLikeText(data) {
			return errors.New("file content is not delimited text")
		}
	}
	return nil
}

// looksLikeText samples up to 512 bytes: no NUL bytes and mostly printable.
func looksLikeText(data []byte) bool {
	sample := data
	if len(sample) > 512 {
		sample = sample[:512]
	}
	if bytes.ContainsRune(sample, 0x00) {
		return false
	}

	printable := 0
	for _, b := range sample {
		if (b >= 0x20 && b <= 0x7E) || b == '\t' || b == '\n' || b == '\r' || b >= 0x80 {
			printable++
		}
	}
	return float64(printable)/float64(len(sample)) > 0.95
}
