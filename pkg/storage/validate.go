package storage

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
)

// Kind groups the file types accepted for one upload purpose.
type Kind struct {
	Name       string
	MaxBytes   int
	Extensions map[string]bool
}

var (
	ResumeKind = Kind{
		Name:       "resume",
		MaxBytes:   5 << 20,
		Extensions: map[string]bool{".pdf": true, ".doc": true, ".docx": true},
	}
	ImageKind = Kind{
		Name:       "image",
		MaxBytes:   8 << 20,
		Extensions: map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true},
	}
)

// Magic byte prefixes per extension.
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".gif":  {[]byte("GIF87a"), []byte("GIF89a")},
	".pdf":  {[]byte("%PDF")},
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},
	".docx": {{0x50, 0x4B, 0x03, 0x04}},
}

// Sniffed MIME types accepted per extension. application/octet-stream is
// only tolerated for legacy Word files, whose magic bytes were checked first.
var allowedMIME = map[string][]string{
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".gif":  {"image/gif"},
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/octet-stream"},
	".docx": {"application/zip", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
}

// Validated describes a file that passed Validate.
type Validated struct {
	Extension   string
	ContentType string
}

// Validate checks size, extension whitelist, magic bytes and sniffed MIME type.
func (k Kind) Validate(filename string, data []byte) (*Validated, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%s file is empty", k.Name)
	}
	if k.MaxBytes > 0 && len(data) > k.MaxBytes {
		return nil, fmt.Errorf("%s file exceeds %d MB", k.Name, k.MaxBytes>>20)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return nil, fmt.Errorf("file has no extension")
	}
	if !k.Extensions[ext] {
		return nil, fmt.Errorf("file extension %s not allowed, expected one of %s", ext, strings.Join(k.AllowedExtensions(), ", "))
	}

	if !hasMagic(ext, data) {
		return nil, fmt.Errorf("file content does not match extension %s", ext)
	}

	detected := http.DetectContentType(data)
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}
	if !mimeAllowed(ext, detected) {
		return nil, fmt.Errorf("content type %s not allowed", detected)
	}

	contentType := detected
	if ext == ".docx" {
		contentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	if ext == ".doc" {
		contentType = "application/msword"
	}
	return &Validated{Extension: ext, ContentType: contentType}, nil
}

// AllowedExtensions lists the accepted extensions, sorted.
func (k Kind) AllowedExtensions() []string {
	out := make([]string, 0, len(k.Extensions))
	for ext := range k.Extensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func hasMagic(ext string, data []byte) bool {
	for _, sig := range magicBytes[ext] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

func mimeAllowed(ext, detected string) bool {
	for _, m := range allowedMIME[ext] {
		if m == detected {
			return true
		}
	}
	return false
}
