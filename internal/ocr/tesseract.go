package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Tesseract runs the tesseract CLI on single-line clock crops, using
// TSV output for word-level confidences.
type Tesseract struct {
	bin string
}

// NewTesseract resolves the tesseract binary from TESSERACT_CMD or
// PATH. A missing binary is a fatal configuration error.
func NewTesseract(binPath string) (*Tesseract, error) {
	if binPath == "" {
		binPath = os.Getenv("TESSERACT_CMD")
	}
	if binPath == "" {
		found, err := exec.LookPath("tesseract")
		if err != nil {
			return nil, fmt.Errorf("%w: install tesseract-ocr or set TESSERACT_CMD", ErrEngineUnavailable)
		}
		binPath = found
	}
	if _, err := os.Stat(binPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEngineUnavailable, binPath)
	}
	return &Tesseract{bin: binPath}, nil
}

// Recognize OCRs a single image. Errors here are per-frame (timeouts,
// undecodable crops) and are mapped to unreadable readings upstream.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) (Result, error) {
	args := []string{
		"stdin", "stdout",
		"--oem", "3",
		"--psm", "7",
		"-c", "tessedit_char_whitelist=0123456789:",
		"tsv",
	}

	cmd := exec.CommandContext(ctx, t.bin, args...)
	cmd.Stdin = bytes.NewReader(image)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("tesseract failed: %w", err)
	}

	return parseTSV(out.String()), nil
}

// parseTSV joins recognized word rows and averages their confidences.
// Tesseract reports word rows at level 5 with conf in [0,100]; rows
// with conf -1 are structural and skipped.
func parseTSV(tsv string) Result {
	var (
		text    strings.Builder
		confSum float64
		words   int
	)

	for _, line := range strings.Split(tsv, "\n") {
		cols := strings.Split(line, "\t")
		if len(cols) < 12 {
			continue
		}
		level, err := strconv.Atoi(cols[0])
		if err != nil || level != 5 {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}
		text.WriteString(word)
		confSum += conf
		words++
	}

	if words == 0 {
		return Result{}
	}

	conf := confSum / float64(words) / 100
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return Result{Text: text.String(), Confidence: conf}
}
