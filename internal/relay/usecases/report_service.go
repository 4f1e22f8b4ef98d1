package usecases

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cfguard-bot/internal/relay/domain"
)

const DefaultChunkSize = 4000

type ReportConfig struct {
	StagingDir string
	ChunkSize  int
}

// ElapsedReport is the per-task elapsed time. Degraded means the backend was
// unreachable and the rows come from the local log with zero minutes.
type ElapsedReport struct {
	Rows     []domain.ElapsedRow
	Degraded bool
}

// Delivery is a rendered report: either ordered text chunks or one staged file.
type Delivery struct {
	Chunks   []string
	Artifact *domain.Artifact
}

func NewReportService(backend Backend, log EventLog, config ReportConfig) *SimpleReportService {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	if config.StagingDir == "" {
		config.StagingDir = os.TempDir()
	}

	return &SimpleReportService{
		backend: backend,
		log:     log,
		config:  config,
	}
}

var _ ReportService = &SimpleReportService{}

type SimpleReportService struct {
	backend Backend
	log     EventLog
	config  ReportConfig
}

func (s *SimpleReportService) Elapsed(ctx context.Context) (ElapsedReport, error) {
	rows, err := s.backend.Elapsed(ctx)
	if err == nil {
		return ElapsedReport{Rows: rows}, nil
	}

	slog.Warn("elapsed report unavailable, falling back to local log", slog.Any("error", err))

	tasks, logErr := s.log.Tasks(ctx)
	if logErr != nil {
		return ElapsedReport{}, fmt.Errorf("reading local log: %w", logErr)
	}

	degraded := make([]domain.ElapsedRow, 0, len(tasks))
	for _, task := range tasks {
		degraded = append(degraded, domain.ElapsedRow{Task: task, Minutes: 0})
	}

	return ElapsedReport{Rows: degraded, Degraded: true}, nil
}

func (s *SimpleReportService) Render(ctx context.Context, request domain.ReportRequest) (Delivery, error) {
	payload, err := s.backend.Report(ctx, request)
	if err != nil {
		return Delivery{}, fmt.Errorf("requesting %s report for %s: %w", request.Format, request.Project, err)
	}

	switch request.Format {
	case domain.ReportJSON:
		content := []byte(payload.Text)
		if payload.HasRecords() || payload.Text == "" {
			content, err = prettyRecords(payload.Records)
			if err != nil {
				return Delivery{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
			}
		}
		return s.stage(reportFileName(request.Project, "json"), content)
	case domain.ReportTable:
		return s.stage(reportFileName(request.Project, "txt"), []byte(payloadText(payload)))
	case domain.ReportHTML:
		return s.stage(reportFileName(request.Project, "html"), []byte(payloadText(payload)))
	default:
		return Delivery{Chunks: SplitChunks(payloadText(payload), s.config.ChunkSize)}, nil
	}
}

func (s *SimpleReportService) Diff(ctx context.Context, request domain.DiffRequest) (Delivery, error) {
	body, err := s.backend.Diff(ctx, request)
	if err != nil {
		return Delivery{}, fmt.Errorf("requesting diff %s..%s for %s: %w", request.Base, request.New, request.Project, err)
	}

	name := fmt.Sprintf("diff_%s_%s_vs_%s.html",
		sanitizeFileName(request.Project), sanitizeFileName(request.Base), sanitizeFileName(request.New))
	return s.stage(name, []byte(body))
}

func (s *SimpleReportService) stage(name string, content []byte) (Delivery, error) {
	if err := os.MkdirAll(s.config.StagingDir, 0o755); err != nil {
		return Delivery{}, fmt.Errorf("creating staging dir: %w", err)
	}

	dir, err := os.MkdirTemp(s.config.StagingDir, "report-*")
	if err != nil {
		return Delivery{}, fmt.Errorf("creating staging dir: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return Delivery{}, fmt.Errorf("staging %s: %w", name, err)
	}

	slog.Debug("report staged", slog.String("path", path), slog.Int("bytes", len(content)))

	return Delivery{Artifact: &domain.Artifact{Name: name, Path: path}}, nil
}

// SplitChunks cuts text into consecutive segments of at most size runes.
// Concatenating the segments yields text.
func SplitChunks(text string, size int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func prettyRecords(records []json.RawMessage) ([]byte, error) {
	if records == nil {
		records = []json.RawMessage{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func payloadText(payload domain.ReportPayload) string {
	if payload.Text != "" || !payload.HasRecords() {
		return payload.Text
	}
	content, err := prettyRecords(payload.Records)
	if err != nil {
		return ""
	}
	return string(content)
}

func reportFileName(project, extension string) string {
	return fmt.Sprintf("%s_report.%s", sanitizeFileName(project), extension)
}

func sanitizeFileName(value string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, strings.TrimSpace(value))
	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		return "report"
	}
	return cleaned
}
