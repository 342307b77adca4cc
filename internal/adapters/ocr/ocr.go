// Package ocr turns payment receipt images into text for the reconciliation
// engine. Two backends are supported: the CLOVA OCR general API, which
// returns recognised text fields, and a document-understanding inference
// service, which returns either a structured receipt record or raw text.
//
// Example usage:
//
//	ext, err := ocr.New(cfg.OCR, logger)
//	res, err := ext.Extract(ctx, ocr.Image{Name: "receipt.jpg", Data: data})
//	outcomes := engine.Reconcile(res.Text(), entries)
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/eshaffer321/tuition-reconciler/internal/domain/evidence"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/config"
)

var (
	// ErrEmptyImage is returned for an image with no bytes.
	ErrEmptyImage = errors.New("empty image")

	// ErrNoText is returned when the backend recognised nothing.
	ErrNoText = errors.New("no text recognised")
)

// Image is an uploaded receipt image.
type Image struct {
	Name string
	Data []byte
}

// Format returns the lower-case file extension, defaulting to "jpg".
func (i Image) Format() string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(i.Name)), ".")
	if ext == "" {
		return "jpg"
	}
	return ext
}

// Result is what an extractor produced: plain text or a structured record.
type Result struct {
	RawText string
	Record  *evidence.Record
}

// Text returns the input for the evidence parser. A record is flattened
// into one line per item.
func (r Result) Text() string {
	if r.Record != nil {
		return r.Record.Flatten()
	}
	return r.RawText
}

// Extractor turns an image into text or a record.
type Extractor interface {
	Extract(ctx context.Context, img Image) (*Result, error)
}

// New builds the extractor selected by cfg.Provider, wrapped in a cache
// when cfg.CacheSize is positive. An empty provider returns (nil, nil).
func New(cfg config.OCRConfig, logger *slog.Logger) (Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client := newHTTPClient(cfg.Timeout, cfg.RetryMax, logger)

	var ext Extractor
	switch cfg.Provider {
	case "":
		return nil, nil
	case "clova":
		ext = NewClovaClient(cfg.Clova.InvokeURL, cfg.Clova.SecretKey, client)
	case "inference":
		ext = NewInferenceClient(cfg.Inference.URL, cfg.Inference.APIKey, client)
	default:
		return nil, fmt.Errorf("unknown ocr provider %q", cfg.Provider)
	}

	if cfg.CacheSize > 0 {
		cached, err := NewCachingExtractor(ext, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		ext = cached
	}
	return ext, nil
}

// newHTTPClient returns a retrying client that logs through slog.
func newHTTPClient(timeout time.Duration, retryMax int, logger *slog.Logger) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = logger
	if timeout > 0 {
		client.HTTPClient.Timeout = timeout
	}
	return client
}

// statusError describes a non-2xx backend response.
func statusError(backend string, resp *http.Response, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return fmt.Errorf("%s returned status %d: %s", backend, resp.StatusCode, msg)
}
