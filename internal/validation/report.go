package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// MaxReportSize is the largest report upload accepted.
const MaxReportSize = 5 << 20

// reportTypes maps accepted file extensions to the content type sniffed from
// the file itself. Camera captures arrive as JPEG; gallery picks may be PNG or
// WebP; lab results are often PDFs.
var reportTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// ValidateReportFile checks an uploaded report's size, extension and sniffed
// content type, and returns the content type. It reads through its own handle
// from header.Open, so a file the caller already holds is left untouched.
func ValidateReportFile(header *multipart.FileHeader) (string, error) {
	if header.Size > MaxReportSize {
		return "", fmt.Errorf("file too large: maximum size is %d MB", MaxReportSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	want, ok := reportTypes[ext]
	if !ok {
		return "", fmt.Errorf("invalid file extension: %q", ext)
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	detected := http.DetectContentType(head[:n])
	if detected != want {
		return "", fmt.Errorf("invalid file type (detected: %s)", detected)
	}

	return detected, nil
}
