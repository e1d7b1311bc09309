package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	defaultImportWorkers = 4
	maxImportWorkers     = 10
)

type ImportUsersFromSpreadsheetInput struct {
	Content io.Reader
	Details bool
}

type ImportFailureOutput struct {
	Row    int64  `json:"row"`
	Email  string `json:"email,omitempty"`
	Reason string `json:"reason"`
}

type ImportUsersFromSpreadsheetOutput struct {
	TotalRecords int64
	SuccessCount int64
	FailCount    int64
	Failures     []ImportFailureOutput
}

type ImportUsersFromSpreadsheet interface {
	Execute(ctx context.Context, in ImportUsersFromSpreadsheetInput) (ImportUsersFromSpreadsheetOutput, error)
}

type SourceReader interface {
	Read(r io.Reader) ([]domain.SourceRow, error)
}

type ImportMetrics interface {
	RecordImportRow(outcome domain.ImportOutcome)
}

type ImportConfig struct {
	Workers int
}

type importUsersFromSpreadsheet struct {
	reader  SourceReader
	writer  *RecordWriter
	metrics ImportMetrics
	logger  logrus.FieldLogger
	cfg     ImportConfig
}

func NewImportUsersFromSpreadsheet(reader SourceReader, writer *RecordWriter, metrics ImportMetrics, logger logrus.FieldLogger, cfg ImportConfig) ImportUsersFromSpreadsheet {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultImportWorkers
	}
	if cfg.Workers > maxImportWorkers {
		cfg.Workers = maxImportWorkers
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &importUsersFromSpreadsheet{
		reader:  reader,
		writer:  writer,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

func (uc *importUsersFromSpreadsheet) Execute(ctx context.Context, in ImportUsersFromSpreadsheetInput) (ImportUsersFromSpreadsheetOutput, error) {
	if in.Content == nil {
		return ImportUsersFromSpreadsheetOutput{}, ErrInvalidImportSource
	}

	// The whole sheet is parsed up front: a format error must not leave a partial import behind.
	rows, err := uc.reader.Read(in.Content)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedFormat) {
			return ImportUsersFromSpreadsheetOutput{}, err
		}
		return ImportUsersFromSpreadsheetOutput{}, fmt.Errorf("%w: %v", domain.ErrUnsupportedFormat, err)
	}

	var (
		mu      sync.Mutex
		summary domain.ImportSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.Workers)
	for _, row := range rows {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			result, err := uc.writer.Write(gctx, row.Record)
			if err != nil {
				return err
			}

			email := result.User.Email
			if email == "" {
				email = domain.NormalizeEmail(row.Record.Get(domain.FieldEmail))
			}

			mu.Lock()
			summary.Record(row.Number, email, result.Outcome, result.Reason)
			mu.Unlock()
			uc.metrics.RecordImportRow(result.Outcome)
			return nil
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	out := toImportOutput(summary, in.Details)
	logger := uc.logger.WithFields(logrus.Fields{
		"rows":    len(rows),
		"success": out.SuccessCount,
		"failed":  out.FailCount,
	})
	if err != nil {
		logger.WithError(err).Error("spreadsheet import aborted")
		if errors.Is(err, domain.ErrStoreUnavailable) || ctx.Err() != nil {
			return out, err
		}
		return out, fmt.Errorf("%w: %v", ErrImportUsers, err)
	}

	logger.Info("spreadsheet import finished")
	return out, nil
}

func toImportOutput(summary domain.ImportSummary, details bool) ImportUsersFromSpreadsheetOutput {
	out := ImportUsersFromSpreadsheetOutput{
		TotalRecords: summary.TotalRecords,
		SuccessCount: summary.SuccessCount,
		FailCount:    summary.FailCount,
	}
	if !details {
		return out
	}

	out.Failures = make([]ImportFailureOutput, 0, len(summary.Failures))
	for _, f := range summary.Failures {
		out.Failures = append(out.Failures, ImportFailureOutput{Row: f.RowIndex, Email: f.Email, Reason: f.Reason})
	}
	sort.Slice(out.Failures, func(i, j int) bool { return out.Failures[i].Row < out.Failures[j].Row })
	return out
}

type noopMetrics struct{}

func (noopMetrics) RecordImportRow(domain.ImportOutcome) {}
