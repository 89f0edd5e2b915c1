package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"doclocker-admin/internal/shared/model"
)

var (
	pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	jpgBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0, 16, 'J', 'F', 'I', 'F', 0}
)

func writeTempFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blob")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestClassifyFile(t *testing.T) {
	tests := []struct {
		name     string
		content  []byte
		declared string
		want     model.FileType
	}{
		{"png", pngBytes, "photo.png", model.FileTypeImage},
		{"jpeg", jpgBytes, "photo.jpg", model.FileTypeImage},
		{"jpeg alt extension", jpgBytes, "photo.jpeg", model.FileTypeImage},
		{"pdf", pdfBytes, "report.pdf", model.FileTypePDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, tt.content)
			got, contentType, err := ClassifyFile(path, tt.declared, int64(len(tt.content)))
			if err != nil {
				t.Fatalf("ClassifyFile error: %v", err)
			}
			if got != tt.want {
				t.Errorf("file type = %q, want %q", got, tt.want)
			}
			if contentType == "" {
				t.Error("empty content type")
			}
		})
	}
}

func TestClassifyFileRejectsSpoofedExtension(t *testing.T) {
	// PNG 内容改名成 .pdf — 按内容识别后扩展名对不上
	path := writeTempFile(t, pngBytes)
	_, _, err := ClassifyFile(path, "disguised.pdf", int64(len(pngBytes)))
	var ve *sniffError
	if !errors.As(err, &ve) {
		t.Fatalf("spoofed extension accepted, err = %v", err)
	}
}

func TestClassifyFileRejectsDisallowedType(t *testing.T) {
	path := writeTempFile(t, []byte("#!/bin/sh\nrm -rf /\n"))
	_, _, err := ClassifyFile(path, "script.png", 20)
	var ve *sniffError
	if !errors.As(err, &ve) {
		t.Fatalf("disallowed type accepted, err = %v", err)
	}
}

func TestClassifyFileRejectsOversizeBeforeReading(t *testing.T) {
	// 路径故意不存在：超限必须在读文件之前拒绝
	_, _, err := ClassifyFile(filepath.Join(t.TempDir(), "missing"), "big.pdf", MaxUploadSize+1)
	var ve *sniffError
	if !errors.As(err, &ve) {
		t.Fatalf("oversize file not rejected up front, err = %v", err)
	}
}

func TestClassifyFileRejectsEmpty(t *testing.T) {
	path := writeTempFile(t, nil)
	_, _, err := ClassifyFile(path, "empty.pdf", 0)
	var ve *sniffError
	if !errors.As(err, &ve) {
		t.Fatalf("empty file accepted, err = %v", err)
	}
}
