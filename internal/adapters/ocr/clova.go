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
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// ClovaClient calls the CLOVA OCR general (V2) API.
type ClovaClient struct {
	invokeURL string
	secretKey string
	client    *retryablehttp.Client
}

// NewClovaClient creates a CLOVA OCR client
func NewClovaClient(invokeURL, secretKey string, client *retryablehttp.Client) *ClovaClient {
	return &ClovaClient{
		invokeURL: invokeURL,
		secretKey: secretKey,
		client:    client,
	}
}

type clovaMessage struct {
	Version   string            `json:"version"`
	RequestID string            `json:"requestId"`
	Timestamp int64             `json:"timestamp"`
	Images    []clovaImageEntry `json:"images"`
}

type clovaImageEntry struct {
	Format string `json:"format"`
	Name   string `json:"name"`
}

type clovaResponse struct {
	Images []struct {
		InferResult string `json:"inferResult"`
		Message     string `json:"message"`
		Fields      []struct {
			InferText string `json:"inferText"`
			LineBreak bool   `json:"lineBreak"`
		} `json:"fields"`
	} `json:"images"`
}

// Extract sends the image and joins the recognised fields into lines
func (c *ClovaClient) Extract(ctx context.Context, img Image) (*Result, error) {
	if len(img.Data) == 0 {
		return nil, ErrEmptyImage
	}

	body, contentType, err := c.buildRequest(img)
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.invokeURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-OCR-SECRET", c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call clova ocr: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("clova ocr", resp, respBody)
	}

	var parsed clovaResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Images) == 0 {
		return nil, ErrNoText
	}
	image := parsed.Images[0]
	if image.InferResult != "" && image.InferResult != "SUCCESS" {
		return nil, fmt.Errorf("clova ocr inference %s: %s", image.InferResult, image.Message)
	}

	// Fields carry lineBreak on the last word of a line. Older models omit
	// it, in which case every field is put on its own line.
	hasBreaks := false
	for _, f := range image.Fields {
		if f.LineBreak {
			hasBreaks = true
			break
		}
	}

	var sb strings.Builder
	for i, f := range image.Fields {
		sb.WriteString(f.InferText)
		if i == len(image.Fields)-1 {
			break
		}
		if f.LineBreak || !hasBreaks {
			sb.WriteString("\n")
		} else {
			sb.WriteString(" ")
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, ErrNoText
	}
	return &Result{RawText: text}, nil
}

func (c *ClovaClient) buildRequest(img Image) ([]byte, string, error) {
	message, err := json.Marshal(clovaMessage{
		Version:   "V2",
		RequestID: uuid.NewString(),
		Timestamp: time.Now().UnixMilli(),
		Images:    []clovaImageEntry{{Format: img.Format(), Name: "receipt"}},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal message: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("message", string(message)); err != nil {
		return nil, "", err
	}
	part, err := w.CreateFormFile("file", img.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
