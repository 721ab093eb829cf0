package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"label-scanner/internal/carriers"
	"label-scanner/internal/pdfsource"
)

// ErrPageExtraction wraps failures to read a single page
var ErrPageExtraction = errors.New("page extraction failed")

// MaxWorkers caps per-page recognition parallelism
const MaxWorkers = 64

// PageSource supplies text and positioned tokens per page.
// Page numbers are 1-based.
type PageSource interface {
	NumPages() int
	Page(n int) (*carriers.Page, error)
}

// Document is a PageSource that holds an open resource
type Document interface {
	PageSource
	io.Closer
}

// Opener opens the document at path for ScanFile
type Opener func(path string) (Document, error)

// OpenPDF is the default Opener
func OpenPDF(path string) (Document, error) {
	doc, err := pdfsource.Open(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Scanner runs every page of a document through a recognizer chain
type Scanner struct {
	chain   *carriers.Chain
	logger  *slog.Logger
	workers int
	opener  Opener
}

type Option func(*Scanner)

// WithLogger sets the logger; nil keeps slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWorkers enables parallel recognition with up to n pages in flight
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = min(n, MaxWorkers)
		}
	}
}

// WithOpener replaces the document opener used by ScanFile
func WithOpener(opener Opener) Option {
	return func(s *Scanner) {
		if opener != nil {
			s.opener = opener
		}
	}
}

// New creates a scanner over chain; a nil chain means carriers.DefaultChain()
func New(chain *carriers.Chain, opts ...Option) *Scanner {
	if chain == nil {
		chain = carriers.DefaultChain()
	}
	s := &Scanner{
		chain:   chain,
		logger:  slog.Default(),
		workers: 1,
		opener:  OpenPDF,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Chain returns the recognizer chain the scanner dispatches to
func (s *Scanner) Chain() *carriers.Chain {
	return s.chain
}

// Workers returns the configured parallelism
func (s *Scanner) Workers() int {
	return s.workers
}

// ScanFile opens path, scans it and closes it on every exit path
func (s *Scanner) ScanFile(ctx context.Context, path string) (*Result, error) {
	doc, err := s.opener(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if err := doc.Close(); err != nil {
			s.logger.Warn("Failed to close document", "path", path, "error", err)
		}
	}()

	result, err := s.Scan(ctx, doc)
	if err != nil {
		return nil, err
	}
	result.Source = path
	return result, nil
}

// pageOutcome is the per-page classification before assembly
type pageOutcome struct {
	result  carriers.PageResult
	matched bool
	err     error
}

// Scan classifies every page of src. Page failures become diagnostics; only
// context cancellation fails the call.
func (s *Scanner) Scan(ctx context.Context, src PageSource) (*Result, error) {
	scanID := uuid.NewString()
	logger := s.logger.With("scan_id", scanID)

	total := src.NumPages()
	logger.Info("Starting scan", "pages", total, "workers", s.workers, "chain", s.chain.Signature())

	outcomes := make([]pageOutcome, total)
	if s.workers <= 1 {
		for i := range outcomes {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcomes[i] = s.scanPage(src, i+1)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.workers)
		for i := range outcomes {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				outcomes[i] = s.scanPage(src, i+1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	result := &Result{
		ScanID:       scanID,
		Pages:        total,
		Rows:         []OrderRow{},
		Unrecognized: []Diagnostic{},
	}
	for i, out := range outcomes {
		s.collect(logger, result, i+1, out)
	}

	logger.Info("Scan completed",
		"pages", total,
		"recognized", len(result.Rows),
		"unrecognized", len(result.Unrecognized))
	return result, nil
}

// scanPage reads and classifies one page. Panics raised by the page source
// or a recognizer are converted to ErrPageExtraction.
func (s *Scanner) scanPage(src PageSource, n int) (out pageOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = pageOutcome{err: fmt.Errorf("%w: page %d: panic: %v", ErrPageExtraction, n, r)}
		}
	}()

	page, err := src.Page(n)
	if err != nil {
		return pageOutcome{err: fmt.Errorf("%w: page %d: %w", ErrPageExtraction, n, err)}
	}
	if page == nil {
		return pageOutcome{err: fmt.Errorf("%w: page %d: no content", ErrPageExtraction, n)}
	}
	page.Number = n

	result, ok := s.chain.Dispatch(page)
	return pageOutcome{result: result, matched: ok}
}

func (s *Scanner) collect(logger *slog.Logger, result *Result, n int, out pageOutcome) {
	switch {
	case out.err != nil:
		logger.Error("Page extraction failed", "page", n, "error", out.err)
		result.Unrecognized = append(result.Unrecognized, Diagnostic{
			PageNumber: n,
			Reason:     ReasonExtractionFailure,
			Error:      out.err.Error(),
		})

	case !out.matched:
		logger.Warn("No carrier matched page", "page", n)
		result.Unrecognized = append(result.Unrecognized, Diagnostic{
			PageNumber: n,
			Reason:     ReasonNoCarrierMatch,
		})

	case !out.result.HasOrderSN():
		logger.Warn("Carrier matched but order id is missing",
			"page", n,
			"carrier", out.result.DeliveryMethod,
			"delivery_method_raw", out.result.DeliveryMethodRaw)
		result.Unrecognized = append(result.Unrecognized, Diagnostic{
			PageNumber:     n,
			DeliveryMethod: stringPtr(string(out.result.DeliveryMethod)),
			Reason:         ReasonFieldMissing,
		})

	default:
		logger.Debug("Page recognized",
			"page", n,
			"carrier", out.result.DeliveryMethod,
			"order_sn", out.result.OrderSN,
			"shop_name", out.result.ShopName)
		result.Rows = append(result.Rows, newOrderRow(out.result))
	}
}
