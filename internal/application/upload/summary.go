// Package upload turns uploaded data files into a compact text summary
// that can accompany a chat message
package upload

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/healyfit/healy/internal/infrastructure/config"
	"github.com/healyfit/healy/internal/infrastructure/monitoring"
	apperrors "github.com/healyfit/healy/pkg/errors"
)

// Summary is the processed result of one upload event
type Summary struct {
	Filename    string
	Fingerprint string
	Columns     []string
	RowCount    int
	Preview     string
}

// ContextText renders the summary as the text block attached to an advice
// request
func (s *Summary) ContextText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", s.Filename)
	fmt.Fprintf(&b, "Columns: %s\n", strings.Join(s.Columns, ", "))
	fmt.Fprintf(&b, "Rows: %d\n", s.RowCount)
	if s.Preview != "" {
		fmt.Fprintf(&b, "First rows:\n%s", s.Preview)
	}
	return b.String()
}

// Summarizer parses uploaded CSV files into preview text
type Summarizer struct {
	maxFileSize int64
	maxRows     int
	allowedExts []string
	logger      *zap.Logger
	metrics     *monitoring.Metrics
}

// NewSummarizer creates a new upload summarizer
func NewSummarizer(cfg *config.Config, logger *zap.Logger, metrics *monitoring.Metrics) *Summarizer {
	return &Summarizer{
		maxFileSize: cfg.Upload.MaxFileSize,
		maxRows:     cfg.Upload.MaxPreviewRows,
		allowedExts: cfg.Upload.AllowedExtensions,
		logger:      logger.Named("upload"),
		metrics:     metrics,
	}
}

// Summarize reads an uploaded file and produces its summary. The returned
// fingerprint identifies the upload event: the same file content under the
// same name always yields the same fingerprint, so callers can detect and
// skip re-processing.
func (s *Summarizer) Summarize(filename string, r io.Reader) (*Summary, error) {
	if !s.extensionAllowed(filename) {
		return nil, apperrors.NewUploadUnsupportedError(filename)
	}

	// Read one byte past the limit to distinguish "at limit" from "over it"
	content, err := io.ReadAll(io.LimitReader(r, s.maxFileSize+1))
	if err != nil {
		return nil, apperrors.NewUploadUnreadableError(err)
	}
	if int64(len(content)) > s.maxFileSize {
		return nil, apperrors.NewUploadTooLargeError(s.maxFileSize)
	}

	columns, preview, rowCount, err := s.previewCSV(content)
	if err != nil {
		return nil, apperrors.NewUploadUnreadableError(err)
	}

	summary := &Summary{
		Filename:    filename,
		Fingerprint: Fingerprint(filename, content),
		Columns:     columns,
		RowCount:    rowCount,
		Preview:     preview,
	}

	s.logger.Info("Summarized upload",
		zap.String("filename", filename),
		zap.String("fingerprint", summary.Fingerprint),
		zap.Int("rows", rowCount),
	)
	s.metrics.RecordUploadProcessed()

	return summary, nil
}

// previewCSV renders the header and first rows as "column: value" lines
func (s *Summarizer) previewCSV(content []byte) ([]string, string, int, error) {
	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, "", 0, fmt.Errorf("missing header row: %w", err)
	}

	var lines []string
	rowCount := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", 0, err
		}

		rowCount++
		if len(lines) >= s.maxRows {
			continue
		}

		pairs := make([]string, 0, len(header))
		for i, col := range header {
			value := ""
			if i < len(record) {
				value = record[i]
			}
			pairs = append(pairs, fmt.Sprintf("%s: %s", col, value))
		}
		lines = append(lines, strings.Join(pairs, ", "))
	}

	return header, strings.Join(lines, "\n"), rowCount, nil
}

// extensionAllowed checks the filename against the allowed extension list
func (s *Summarizer) extensionAllowed(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range s.allowedExts {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// Fingerprint derives the upload-event identity from filename and content
func Fingerprint(filename string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(filename))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
