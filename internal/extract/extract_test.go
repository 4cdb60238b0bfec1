package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const documentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>第一章　雨夜</w:t></w:r></w:p>
<w:p><w:r><w:t>林晚推開門，</w:t></w:r><w:r><w:t>風雪灌進來。</w:t></w:r></w:p>
</w:body>
</w:document>`

func TestTextFromBytesDocx(t *testing.T) {
	data := buildZip(t, map[string]string{"word/document.xml": documentXML})

	got, err := TextFromBytes(context.Background(), data, MimeDOCX, "ch1.docx")
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	want := "第一章　雨夜\n\n林晚推開門，風雪灌進來。"
	if got != want {
		t.Fatalf("unexpected text:\n%q\nwant\n%q", got, want)
	}
}

func TestTextFromBytesDocxTooLarge(t *testing.T) {
	prev := maxDocumentXMLBytes
	maxDocumentXMLBytes = 64
	defer func() { maxDocumentXMLBytes = prev }()

	data := buildZip(t, map[string]string{"word/document.xml": documentXML})
	if _, err := TextFromBytes(context.Background(), data, MimeDOCX, "ch1.docx"); err == nil {
		t.Fatalf("expected oversized document.xml to be rejected")
	}
}

func TestTextFromBytesZipMimeDetectsDocx(t *testing.T) {
	data := buildZip(t, map[string]string{"word/document.xml": documentXML})
	if _, err := TextFromBytes(context.Background(), data, "application/zip", "upload.bin"); err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
}

func TestTextFromBytesRealZipRejected(t *testing.T) {
	data := buildZip(t, map[string]string{"notes.txt": "hello"})
	_, err := TextFromBytes(context.Background(), data, "application/zip", "notes.zip")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestTextFromBytesPlain(t *testing.T) {
	data := []byte("\xef\xbb\xbf第一段\r\n\r\n第二段\r\n")
	got, err := TextFromBytes(context.Background(), data, "", "chapter.txt")
	if err != nil {
		t.Fatalf("extract txt: %v", err)
	}
	if got != "第一段\n\n第二段" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextFromBytesPlainRejectsBinary(t *testing.T) {
	if _, err := TextFromBytes(context.Background(), []byte{0xff, 0xfe, 0x00}, "text/plain; charset=utf-8", "x.txt"); err == nil {
		t.Fatal("expected invalid utf-8 error")
	}
}

func TestTextFromBytesHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := TextFromBytes(ctx, []byte("x"), MimePlain, "x.txt"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
