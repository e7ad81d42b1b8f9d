package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/ledongthuc/pdf"

	"leke-chat/internal/llm"
)

var (
	ErrUnsupportedDocument = errors.New("unsupported file format")
	ErrUnreadableDocument  = errors.New("document could not be read")
)

// Document is an uploaded file reduced to what the model needs.
type Document struct {
	Name  string
	Text  string
	Image *llm.Image
}

type FileExtractService struct{}

func NewFileExtractService() *FileExtractService {
	return &FileExtractService{}
}

// Supported reports whether name has an extension Extract can handle.
func (s *FileExtractService) Supported(name string) bool {
	_, ok := documentKinds[strings.ToLower(filepath.Ext(name))]
	return ok
}

var documentKinds = map[string]string{
	".pdf":  "pdf",
	".csv":  "csv",
	".png":  "image",
	".jpg":  "image",
	".jpeg": "image",
	".gif":  "image",
	".bmp":  "image",
}

var imageMIME = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
}

// Extract dispatches on the file extension. Images are not read as text;
// they are carried along for vision-capable models.
func (s *FileExtractService) Extract(name string, data []byte) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(name))

	switch documentKinds[ext] {
	case "pdf":
		text, err := s.extractPDF(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
		}
		return &Document{Name: name, Text: text}, nil
	case "csv":
		text, err := s.extractCSV(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
		}
		return &Document{Name: name, Text: text}, nil
	case "image":
		if len(data) == 0 {
			return nil, fmt.Errorf("%w: image is empty", ErrUnreadableDocument)
		}
		return &Document{
			Name:  name,
			Text:  fmt.Sprintf("Image file %s is attached for visual analysis.", name),
			Image: &llm.Image{MIMEType: imageMIME[ext], Data: data},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDocument, ext)
	}
}

func (s *FileExtractService) extractPDF(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	text = normalizeExtractedText(b.String())
	if text == "" {
		return "", fmt.Errorf("no extractable text found in pdf")
	}

	return text, nil
}

// extractCSV renders the rows as a space-aligned table without an index
// column.
func (s *FileExtractService) extractCSV(data []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', tabwriter.AlignRight)
	rows := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		fmt.Fprintln(w, strings.Join(record, "\t")+"\t")
		rows++
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	if rows == 0 {
		return "", fmt.Errorf("csv file is empty")
	}

	return normalizeExtractedText(buf.String()), nil
}

func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	buf := bytes.Buffer{}

	emptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			emptyCount++
			if emptyCount > 1 {
				continue
			}
			buf.WriteString("\n")
			continue
		}
		emptyCount = 0
		buf.WriteString(trimmed)
		buf.WriteString("\n")
	}

	return strings.TrimSpace(buf.String())
}
