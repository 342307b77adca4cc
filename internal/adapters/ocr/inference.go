package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/eshaffer321/tuition-reconciler/internal/domain/evidence"
)

// Inference response statuses
const (
	statusSuccess        = "success"
	statusPartialSuccess = "partial_success"
	statusErrored        = "error"
)

// InferenceClient calls a document-understanding model served over HTTP.
// The service answers with a receipt record on success, or with the raw
// decoded sequence as text_content when it could not be structured.
type InferenceClient struct {
	url    string
	apiKey string
	client *retryablehttp.Client
}

// NewInferenceClient creates an inference service client
func NewInferenceClient(url, apiKey string, client *retryablehttp.Client) *InferenceClient {
	return &InferenceClient{
		url:    url,
		apiKey: apiKey,
		client: client,
	}
}

type inferenceResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Extract uploads the image and decodes the model output
func (c *InferenceClient) Extract(ctx context.Context, img Image) (*Result, error) {
	if len(img.Data) == 0 {
		return nil, ErrEmptyImage
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image_file", img.Name)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.url, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call inference service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("inference service", resp, body)
	}

	var parsed inferenceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	switch parsed.Status {
	case statusSuccess:
		rec, err := evidence.ParseRecord(parsed.Result)
		if err != nil {
			return nil, err
		}
		return &Result{Record: rec}, nil

	case statusPartialSuccess:
		var partial struct {
			TextContent string `json:"text_content"`
		}
		if err := json.Unmarshal(parsed.Result, &partial); err != nil {
			return nil, fmt.Errorf("failed to parse partial result: %w", err)
		}
		text := strings.TrimSpace(partial.TextContent)
		if text == "" {
			return nil, ErrNoText
		}
		return &Result{RawText: text}, nil

	case statusErrored:
		return nil, fmt.Errorf("inference failed: %s", parsed.Message)

	default:
		return nil, fmt.Errorf("unexpected inference status %q", parsed.Status)
	}
}
