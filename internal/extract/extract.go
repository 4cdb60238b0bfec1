// Package extract turns uploaded manuscript files into plain chapter text.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	MimePlain = "text/plain"
	MimePDF   = "application/pdf"
	MimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// maxDocumentXMLBytes bounds the decompressed word/document.xml of a docx upload.
var maxDocumentXMLBytes int64 = 64 << 20

// ErrUnsupported is returned for formats other than txt, pdf and docx.
var ErrUnsupported = errors.New("unsupported manuscript format")

// TextFromBytes extracts text from an in-memory payload. The type is taken from
// mimeType, falling back to the file extension when the mime type is generic.
func TextFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	normalized := normalizeMimeType(mimeType, fileName, data)
	var (
		text string
		err  error
	)
	switch normalized {
	case MimePlain:
		text, err = extractPlain(data)
	case MimePDF:
		text, err = extractPDF(data)
	case MimeDOCX:
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, normalized)
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", normalized, err)
	}
	return normalizeNewlines(text), nil
}

func extractPlain(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", errors.New("text is not valid utf-8")
	}
	return string(data), nil
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(io.LimitReader(rc, maxDocumentXMLBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(raw)) > maxDocumentXMLBytes {
		return "", fmt.Errorf("document.xml exceeds %d bytes", maxDocumentXMLBytes)
	}
	return stripDocxXML(string(raw)), nil
}

// stripDocxXML keeps run text and turns each paragraph into its own
// blank-line separated block so chapter paragraphs survive the import.
func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			if inText {
				buf.WriteString(string(t))
			}
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				buf.WriteString("\t")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if buf.Len() > 0 {
					buf.WriteString("\n\n")
				}
			case "br":
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}

func normalizeMimeType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case MimePlain, MimePDF, MimeDOCX:
		return clean
	case "application/zip":
		if hasZipEntry(data, "word/document.xml") {
			return MimeDOCX
		}
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".txt", ".md":
		return MimePlain
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	}
	if clean == "" {
		return "application/octet-stream"
	}
	return clean
}

func hasZipEntry(data []byte, entry string) bool {
	if len(data) == 0 {
		return false
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == entry {
			return true
		}
	}
	return false
}
