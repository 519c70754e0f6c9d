// Package pushbullet is a minimal client for the Pushbullet v2 REST API:
// channel listing, file upload and file pushes.
package pushbullet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.pushbullet.com"
	defaultTimeout = 30 * time.Second
)

// Config holds client configuration.
type Config struct {
	APIKey  string
	BaseURL string
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
	Timeout   time.Duration
}

// Channel is a Pushbullet channel owned by the account.
type Channel struct {
	Iden   string `json:"iden"`
	Tag    string `json:"tag"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Upload is the remote file reference returned by an upload request.
type Upload struct {
	FileName  string `json:"file_name"`
	FileType  string `json:"file_type"`
	FileURL   string `json:"file_url"`
	UploadURL string `json:"upload_url,omitempty"`
}

// FilePush is a push carrying a previously uploaded file.
type FilePush struct {
	Title      string
	Body       string
	ChannelTag string
	File       Upload
}

// Client talks to the Pushbullet API.
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Pushbullet client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Channels lists the channels owned by the account.
func (c *Client) Channels(ctx context.Context) ([]Channel, error) {
	var out struct {
		Channels []Channel `json:"channels"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v2/channels", nil, &out); err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return out.Channels, nil
}

// UploadFile requests an upload slot and uploads the file at path.
func (c *Client) UploadFile(ctx context.Context, path, fileType string) (*Upload, error) {
	var slot Upload
	req := map[string]string{
		"file_name": filepath.Base(path),
		"file_type": fileType,
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v2/upload-request", req, &slot); err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	if slot.UploadURL == "" {
		return nil, &APIError{Message: "upload request returned no upload_url"}
	}

	if err := c.uploadTo(ctx, slot.UploadURL, path); err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}
	return &Upload{FileName: slot.FileName, FileType: slot.FileType, FileURL: slot.FileURL}, nil
}

// PushFile sends a file push to a channel.
func (c *Client) PushFile(ctx context.Context, push FilePush) error {
	payload := map[string]string{
		"type":        "file",
		"title":       push.Title,
		"body":        push.Body,
		"file_name":   push.File.FileName,
		"file_type":   push.File.FileType,
		"file_url":    push.File.FileURL,
		"channel_tag": push.ChannelTag,
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v2/pushes", payload, nil); err != nil {
		return fmt.Errorf("push file: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Access-Token", c.config.APIKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkResponse(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) uploadTo(ctx context.Context, uploadURL, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return checkResponse(resp)
}

func (c *Client) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	apiErr := &APIError{Code: resp.StatusCode}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// APIError is a non-2xx response from Pushbullet.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("pushbullet error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("pushbullet error: %s", e.Message)
}
