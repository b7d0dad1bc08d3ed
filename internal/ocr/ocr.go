package ocr

import (
	"context"
	"errors"
)

// ErrEngineUnavailable marks a missing or misconfigured OCR backend.
// It is a fatal configuration error, unlike per-frame recognition
// failures which callers treat as unreadable frames.
var ErrEngineUnavailable = errors.New("ocr engine unavailable")

// Result carries recognized text plus an aggregate confidence in [0,1].
type Result struct {
	Text       string
	Confidence float64
}

// Engine is the boundary to the external OCR backend.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (Result, error)
}
