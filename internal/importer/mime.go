package importer

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize bounds uploaded plan files.
const MaxFileSize = 20 << 20

// DetectMIME guesses the media type from the file extension and falls back
// to sniffing the content.
func DetectMIME(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		if mt, _, err := mime.ParseMediaType(t); err == nil {
			return mt
		}
		return t
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}

// ReadFile loads a plan from disk. Text files become text input; images
// and PDFs are passed through as bytes.
func ReadFile(path string) (Input, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Input{}, ErrEmptyInput
	}
	info, err := os.Stat(path)
	if err != nil {
		return Input{}, fmt.Errorf("stat plan file: %w", err)
	}
	if info.IsDir() {
		return Input{}, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxFileSize {
		return Input{}, fmt.Errorf("%s is larger than %d MB", path, MaxFileSize>>20)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("read plan file: %w", err)
	}
	if len(data) == 0 {
		return Input{}, ErrEmptyInput
	}
	mt := DetectMIME(path, data)
	if strings.HasPrefix(mt, "text/") {
		return Input{Text: string(data)}, nil
	}
	if !Supported(mt) {
		return Input{}, fmt.Errorf("unsupported file type %s", mt)
	}
	return Input{Data: data, MIMEType: mt}, nil
}

// Supported reports whether mt is an image or PDF.
func Supported(mt string) bool {
	return strings.HasPrefix(mt, "image/") || mt == "application/pdf"
}
