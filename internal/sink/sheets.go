package sink

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/insightmine/reddit-quote-miner/internal/miner"
)

// DefaultSheetBatchSize is the number of data rows sent per append call.
const DefaultSheetBatchSize = 100

// rowAppender is the slice of the Sheets API the sink needs.
type rowAppender interface {
	AppendRows(ctx context.Context, values [][]any) error
}

// SheetsConfig configures the spreadsheet sink.
type SheetsConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	BatchSize       int
}

// SheetsSink buffers rows and appends them to a Google Sheet in batches.
// The header row rides along with the first batch that lands; a failed
// append leaves the buffer intact so rows are retried on the next flush.
type SheetsSink struct {
	mu            sync.Mutex
	appender      rowAppender
	batchSize     int
	buffer        [][]any
	headerWritten bool
	logger        *zap.Logger
}

// NewSheetsSink builds a sink backed by the Sheets API.
func NewSheetsSink(ctx context.Context, cfg SheetsConfig, logger *zap.Logger) (*SheetsSink, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets.spreadsheet_id is required")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	sheetName := cfg.SheetName
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	return NewSheetsSinkWithAppender(&sheetsAppender{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
	}, cfg.BatchSize, logger), nil
}

// NewSheetsSinkWithAppender constructs a sink over any appender
// (primarily for testing).
func NewSheetsSinkWithAppender(appender rowAppender, batchSize int, logger *zap.Logger) *SheetsSink {
	if batchSize <= 0 {
		batchSize = DefaultSheetBatchSize
	}
	return &SheetsSink{
		appender:  appender,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Push buffers one record. When the buffer reaches the batch size a chunk
// is appended immediately.
func (s *SheetsSink) Push(ctx context.Context, rec miner.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = append(s.buffer, rec.SheetRow())
	if len(s.buffer) < s.batchSize {
		return nil
	}
	return s.flushChunk(ctx)
}

// Flush drains the whole buffer in batch-size chunks. Safe to call with an
// empty buffer and safe to call repeatedly.
func (s *SheetsSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.buffer) > 0 {
		if err := s.flushChunk(ctx); err != nil {
			return err
		}
	}
	return nil
}

// flushChunk sends up to one batch of buffered rows. The caller holds the
// mutex. Rows leave the buffer only after a successful append.
func (s *SheetsSink) flushChunk(ctx context.Context) error {
	n := len(s.buffer)
	if n == 0 {
		return nil
	}
	if n > s.batchSize {
		n = s.batchSize
	}
	chunk := s.buffer[:n]

	values := chunk
	if !s.headerWritten {
		header := make([]any, len(miner.SheetHeader))
		for i, col := range miner.SheetHeader {
			header[i] = col
		}
		values = append([][]any{header}, chunk...)
	}
	if err := s.appender.AppendRows(ctx, values); err != nil {
		s.logger.Warn("sheet append failed, rows kept buffered",
			zap.Int("rows", n), zap.Error(err))
		return fmt.Errorf("append sheet rows: %w", err)
	}
	s.headerWritten = true
	s.buffer = s.buffer[n:]
	s.logger.Debug("sheet rows appended", zap.Int("rows", n))
	return nil
}

// Buffered reports the number of rows waiting to be appended.
func (s *SheetsSink) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffer)
}

// sheetsAppender is the production rowAppender over the Sheets API.
type sheetsAppender struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

func (a *sheetsAppender) AppendRows(ctx context.Context, values [][]any) error {
	_, err := a.svc.Spreadsheets.Values.
		Append(a.spreadsheetID, a.sheetName+"!A1", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}
