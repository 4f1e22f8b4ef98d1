package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL     = "https://api.telegram.org"
	defaultPollTimeout = 30 * time.Second
	maxErrorBody       = 4 * 1024
	parseModeMarkdown  = "Markdown"
)

var ErrMissingToken = errors.New("telegram token is required")

// APIError is a Bot API answer with ok=false or a non-2xx status.
type APIError struct {
	Method      string
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("telegram %s failed (http %d)", e.Method, e.StatusCode)
	}
	return fmt.Sprintf("telegram %s failed (http %d): %s", e.Method, e.StatusCode, e.Description)
}

type ClientConfig struct {
	BaseURL     string
	Token       string
	PollTimeout time.Duration
	Transport   http.RoundTripper
}

type Client struct {
	baseURL     string
	token       string
	pollTimeout time.Duration
	http        *http.Client
}

func NewClient(config ClientConfig) (*Client, error) {
	token := strings.TrimSpace(config.Token)
	if token == "" {
		return nil, ErrMissingToken
	}

	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("parsing telegram base url: %w", err)
	}

	pollTimeout := config.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}

	transport := config.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		baseURL:     baseURL,
		token:       token,
		pollTimeout: pollTimeout,
		http: &http.Client{
			Timeout:   pollTimeout + 15*time.Second,
			Transport: otelhttp.NewTransport(transport),
		},
	}, nil
}

// GetUpdates long-polls for updates starting at offset and returns them with
// the offset that acknowledges all of them.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, int64, error) {
	values := url.Values{}
	values.Set("timeout", strconv.Itoa(int(c.pollTimeout.Seconds())))
	values.Set("allowed_updates", `["message"]`)
	if offset > 0 {
		values.Set("offset", strconv.FormatInt(offset, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.methodURL("getUpdates")+"?"+values.Encode(), nil)
	if err != nil {
		return nil, offset, err
	}

	var updates []Update
	if err := c.do(req, "getUpdates", &updates); err != nil {
		return nil, offset, err
	}

	next := offset
	for _, update := range updates {
		if update.UpdateID >= next {
			next = update.UpdateID + 1
		}
	}
	return updates, next, nil
}

// SendMessage delivers text to chatID. Markdown text the API refuses to
// parse is sent again as plain text.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markdown bool) error {
	request := sendMessageRequest{ChatID: chatID, Text: text}
	if markdown {
		request.ParseMode = parseModeMarkdown
	}

	err := c.sendMessage(ctx, request)
	var apiErr *APIError
	if markdown && errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
		slog.Debug("markdown refused, sending plain text", slog.Int64("chat_id", chatID), slog.String("reason", apiErr.Description))
		request.ParseMode = ""
		return c.sendMessage(ctx, request)
	}
	return err
}

func (c *Client) sendMessage(ctx context.Context, request sendMessageRequest) error {
	payload, err := json.Marshal(request)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendMessage"), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "sendMessage", nil)
}

// SendDocument uploads the file at filePath to chatID under name.
func (c *Client) SendDocument(ctx context.Context, chatID int64, filePath, name, caption string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return err
	}
	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			return err
		}
	}
	part, err := writer.CreateFormFile("document", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("reading %s: %w", filePath, err)
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendDocument"), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, "sendDocument", nil)
}

func (c *Client) GetFile(ctx context.Context, fileID string) (File, error) {
	values := url.Values{}
	values.Set("file_id", fileID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.methodURL("getFile")+"?"+values.Encode(), nil)
	if err != nil {
		return File{}, err
	}

	var file File
	if err := c.do(req, "getFile", &file); err != nil {
		return File{}, err
	}
	if file.FilePath == "" {
		return File{}, &APIError{Method: "getFile", StatusCode: http.StatusOK, Description: "empty file_path"}
	}
	return file, nil
}

// Download resolves fileID and returns the file content.
func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	file, err := c.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, strings.TrimPrefix(path.Clean("/"+file.FilePath), "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading file: %s", c.redact(err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{Method: "download", StatusCode: resp.StatusCode, Description: compactError(string(body))}
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return content, nil
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

func (c *Client) do(req *http.Request, method string, result any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		// url errors carry the request url, and with it the token
		return fmt.Errorf("telegram %s: %s", method, c.redact(err.Error()))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("telegram %s: reading response: %w", method, err)
	}

	var answer envelope
	if err := json.Unmarshal(raw, &answer); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{Method: method, StatusCode: resp.StatusCode, Description: compactError(string(raw))}
		}
		return fmt.Errorf("telegram %s: decoding response: %w", method, err)
	}

	if !answer.OK || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Method: method, StatusCode: resp.StatusCode, Description: compactError(answer.Description)}
	}

	if result == nil || len(answer.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(answer.Result, result); err != nil {
		return fmt.Errorf("telegram %s: decoding result: %w", method, err)
	}
	return nil
}

func (c *Client) redact(raw string) string {
	return strings.ReplaceAll(raw, c.token, "<token>")
}

func compactError(raw string) string {
	raw = strings.Join(strings.Fields(raw), " ")
	if len(raw) > 300 {
		return raw[:297] + "..."
	}
	return raw
}
