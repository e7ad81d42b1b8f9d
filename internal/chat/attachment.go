package chat

import (
	"fmt"
	"math"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

var allowedMIMETypes = map[string]bool{
	"application/pdf":          true,
	"image/png":                true,
	"image/jpeg":               true,
	"image/jpg":                true,
	"image/gif":                true,
	"image/bmp":                true,
	"text/csv":                 true,
	"application/vnd.ms-excel": true,
}

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".csv":  true,
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// Candidate is a file the user picked but that has not been validated yet.
type Candidate struct {
	Name     string
	Size     int64
	MIMEType string
	Data     []byte
}

// Attachment is the single document that accompanies the next prompt.
type Attachment struct {
	Name     string
	Size     int64
	MIMEType string
	Data     []byte
}

// Preview is what the UI shows for the pending attachment.
type Preview struct {
	Name string
	Size string
}

// AttachmentManager holds at most one pending attachment.
type AttachmentManager struct {
	mu      sync.Mutex
	current *Attachment
}

func NewAttachmentManager() *AttachmentManager {
	return &AttachmentManager{}
}

// Select validates c and, if accepted, replaces the current attachment.
// A rejected candidate leaves the current attachment in place.
func (m *AttachmentManager) Select(c Candidate) (Attachment, error) {
	if !isSupported(c.Name, c.MIMEType) {
		return Attachment{}, &ValidationError{Name: c.Name, MIMEType: c.MIMEType}
	}

	a := Attachment{
		Name:     c.Name,
		Size:     c.Size,
		MIMEType: c.MIMEType,
		Data:     c.Data,
	}

	m.mu.Lock()
	m.current = &a
	m.mu.Unlock()

	return a, nil
}

// Clear drops the current attachment. Safe to call when there is none.
func (m *AttachmentManager) Clear() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

func (m *AttachmentManager) Current() (Attachment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Attachment{}, false
	}
	return *m.current, true
}

func (m *AttachmentManager) Preview() (Preview, bool) {
	a, ok := m.Current()
	if !ok {
		return Preview{}, false
	}
	return Preview{Name: a.Name, Size: FormatSize(a.Size)}, true
}

func isSupported(name, mimeType string) bool {
	if allowedMIMETypes[strings.ToLower(mimeType)] {
		return true
	}
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// FormatSize renders a byte count with two decimals and a binary unit,
// e.g. 1536 -> "1.50 KB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	// floor(log1024(bytes)) in integers, clamped to the largest unit.
	i := 0
	for i < len(sizeUnits)-1 && bytes >= int64(1)<<(10*(i+1)) {
		i++
	}

	return fmt.Sprintf("%.2f %s", float64(bytes)/math.Pow(1024, float64(i)), sizeUnits[i])
}

// CandidateFromFile reads path and sniffs its content type. The extension
// is used when the content is not recognised.
func CandidateFromFile(path string) (Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	mimeType := mimetype.Detect(data).String()
	if base, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = base
	}
	if mimeType == "application/octet-stream" || mimeType == "text/plain" {
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".csv" {
			mimeType = "text/csv"
		} else if byExt := mime.TypeByExtension(ext); byExt != "" {
			if base, _, err := mime.ParseMediaType(byExt); err == nil {
				mimeType = base
			}
		}
	}

	return Candidate{
		Name:     filepath.Base(path),
		Size:     int64(len(data)),
		MIMEType: mimeType,
		Data:     data,
	}, nil
}
