package communication

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cfguard-bot/internal/relay/communication/internal"
	"cfguard-bot/internal/relay/domain"
	"cfguard-bot/internal/relay/usecases"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	_defaultEventTimeout  = 1 * time.Second
	_defaultQueryTimeout  = 5 * time.Second
	_defaultUploadTimeout = 30 * time.Second
	_maxResponseBytes     = 32 << 20
)

type BackendConfig struct {
	BaseURL       string
	EventTimeout  time.Duration
	QueryTimeout  time.Duration
	UploadTimeout time.Duration
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// validator is implemented by every response schema.
type validator interface {
	Validate() error
}

func NewBackendClient(config BackendConfig) (*BackendClient, error) {
	baseURL, err := url.Parse(strings.TrimRight(strings.TrimSpace(config.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing backend url: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", config.BaseURL)
	}

	if config.EventTimeout <= 0 {
		config.EventTimeout = _defaultEventTimeout
	}
	if config.QueryTimeout <= 0 {
		config.QueryTimeout = _defaultQueryTimeout
	}
	if config.UploadTimeout <= 0 {
		config.UploadTimeout = _defaultUploadTimeout
	}

	transport := config.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	initMetrics()

	return &BackendClient{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(transport),
		},
		baseURL: baseURL,
		config:  config,
	}, nil
}

var _ usecases.Backend = (*BackendClient)(nil)

type BackendClient struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     BackendConfig
}

type call struct {
	operation   string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	timeout     time.Duration
}

func (c *BackendClient) PostEvent(ctx context.Context, event domain.TaskEvent) error {
	payload, err := json.Marshal(internal.EventRequest{
		Task: event.TaskID,
		TS:   event.Timestamp(),
	})
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	_, err = c.do(ctx, call{
		operation:   event.Kind.String(),
		method:      http.MethodPost,
		path:        "/" + event.Kind.String(),
		body:        bytes.NewReader(payload),
		contentType: "application/json",
		timeout:     c.config.EventTimeout,
	})
	return err
}

func (c *BackendClient) Elapsed(ctx context.Context) ([]domain.ElapsedRow, error) {
	var response internal.ElapsedResponse
	if err := c.query(ctx, "elapsed", "/elapsed", nil, &response); err != nil {
		return nil, err
	}

	rows := make([]domain.ElapsedRow, len(response))
	for i, row := range response {
		rows[i] = domain.ElapsedRow{Task: *row.Task, Minutes: *row.Minutes}
	}
	return rows, nil
}

func (c *BackendClient) Report(ctx context.Context, request domain.ReportRequest) (domain.ReportPayload, error) {
	query := url.Values{}
	query.Set("project", request.Project)
	query.Set("format", string(request.Format))

	var response internal.ReportResponse
	if err := c.query(ctx, "report", "/report", query, &response); err != nil {
		return domain.ReportPayload{}, err
	}

	payload := domain.ReportPayload{Records: response.Records}
	if response.Report != nil {
		payload.Text = *response.Report
	}
	return payload, nil
}

func (c *BackendClient) Diff(ctx context.Context, request domain.DiffRequest) (string, error) {
	query := url.Values{}
	query.Set("project", request.Project)
	query.Set("left", request.Base)
	query.Set("right", request.New)
	query.Set("format", "html")

	body, err := c.do(ctx, call{
		operation: "diff",
		method:    http.MethodGet,
		path:      "/diff",
		query:     query,
		timeout:   c.config.QueryTimeout,
	})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *BackendClient) Projects(ctx context.Context) ([]string, error) {
	var response internal.ProjectsResponse
	if err := c.query(ctx, "projects", "/projects", nil, &response); err != nil {
		return nil, err
	}
	return *response.Projects, nil
}

func (c *BackendClient) Snapshots(ctx context.Context, project string) ([]string, error) {
	var response internal.SnapshotsResponse
	path := "/projects/" + url.PathEscape(project) + "/snapshots"
	if err := c.query(ctx, "snapshots", path, nil, &response); err != nil {
		return nil, err
	}
	return *response.Snapshots, nil
}

func (c *BackendClient) Import(ctx context.Context, request domain.ImportRequest) (domain.ImportResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", request.FileName)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(request.Content); err != nil {
		return domain.ImportResult{}, fmt.Errorf("writing form file: %w", err)
	}
	if err := writer.WriteField("name", request.FileName); err != nil {
		return domain.ImportResult{}, fmt.Errorf("writing form field: %w", err)
	}
	if err := writer.WriteField("project", request.Project); err != nil {
		return domain.ImportResult{}, fmt.Errorf("writing form field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return domain.ImportResult{}, fmt.Errorf("closing multipart body: %w", err)
	}

	body, err := c.do(ctx, call{
		operation:   "import",
		method:      http.MethodPost,
		path:        "/import",
		body:        &buf,
		contentType: writer.FormDataContentType(),
		timeout:     c.config.UploadTimeout,
	})
	if err != nil {
		return domain.ImportResult{}, err
	}

	var response internal.ImportResponse
	if err := decode(body, &response); err != nil {
		return domain.ImportResult{}, err
	}

	return domain.ImportResult{
		Imported:   *response.Imported,
		SnapshotID: response.SnapshotID,
	}, nil
}

func (c *BackendClient) SetSnapshotStatus(ctx context.Context, status domain.SnapshotStatus) error {
	return c.send(ctx, "snapshot_status", http.MethodPut, "/snapshot/status", internal.SnapshotStatusRequest{
		Project:    status.Project,
		SnapshotID: status.SnapshotID,
		Status:     status.Status,
	})
}

func (c *BackendClient) Reset(ctx context.Context, force bool) error {
	return c.send(ctx, "reset", http.MethodPost, "/reset", internal.ResetRequest{Force: force})
}

func (c *BackendClient) send(ctx context.Context, operation, method, path string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", operation, err)
	}

	_, err = c.do(ctx, call{
		operation:   operation,
		method:      method,
		path:        path,
		body:        bytes.NewReader(data),
		contentType: "application/json",
		timeout:     c.config.QueryTimeout,
	})
	return err
}

func (c *BackendClient) query(ctx context.Context, operation, path string, query url.Values, out validator) error {
	body, err := c.do(ctx, call{
		operation: operation,
		method:    http.MethodGet,
		path:      path,
		query:     query,
		timeout:   c.config.QueryTimeout,
	})
	if err != nil {
		return err
	}
	return decode(body, out)
}

func decode(body []byte, out validator) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", usecases.ErrMalformedResponse, err)
	}
	if err := out.Validate(); err != nil {
		return fmt.Errorf("%w: %v", usecases.ErrMalformedResponse, err)
	}
	return nil
}

// do runs one bounded request. Transport failures and timeouts resolve to
// ErrBackendUnavailable, non-2xx answers to *usecases.StatusError.
func (c *BackendClient) do(ctx context.Context, request call) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, request.timeout)
	defer cancel()

	endpoint := c.baseURL.JoinPath(request.path)
	if len(request.query) > 0 {
		endpoint.RawQuery = request.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, request.method, endpoint.String(), request.body)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", request.operation, err)
	}
	if request.contentType != "" {
		req.Header.Set("Content-Type", request.contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(ctx, request.operation, "unavailable", start)
		slog.Debug("backend request failed",
			slog.String("operation", request.operation),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: %s: %v", usecases.ErrBackendUnavailable, request.operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, _maxResponseBytes))
	if err != nil {
		c.record(ctx, request.operation, "unavailable", start)
		return nil, fmt.Errorf("%w: reading %s response: %v", usecases.ErrBackendUnavailable, request.operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.record(ctx, request.operation, "status", start)
		return nil, &usecases.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	c.record(ctx, request.operation, "ok", start)
	return body, nil
}

func (c *BackendClient) record(ctx context.Context, operation, outcome string, start time.Time) {
	// the request context may already be past its deadline
	ctx = context.WithoutCancel(ctx)
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	relayRequestTotal.Add(ctx, 1, attrs)
	relayRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
}

