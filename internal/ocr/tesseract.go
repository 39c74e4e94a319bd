package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Extractor reads printed text out of an image file.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Tesseract shells out to the tesseract CLI.
type Tesseract struct {
	Binary   string
	Language string
}

func NewTesseract(binary string) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	return &Tesseract{Binary: binary, Language: "eng"}
}

func (t *Tesseract) Extract(ctx context.Context, path string) (string, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.Binary, path, "stdout", "-l", t.Language)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("tesseract: %w: %s", err, msg)
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}
