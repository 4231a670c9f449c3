package parse

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine runs Tesseract over a rendered page image. A fresh client
// per call because gosseract clients are not safe for concurrent use.
type TesseractEngine struct {
	languages []string
}

func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{languages: []string{"por", "eng", "spa"}}
}

func (e *TesseractEngine) ImageText(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return "", fmt.Errorf("setting OCR languages: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("setting OCR segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("loading OCR image: %w", err)
	}
	return client.Text()
}
