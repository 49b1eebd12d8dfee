package deadlink

import (
	"context"
	"io"
	"log"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/urlnorm"
)

// DefaultBatchSize is the number of probes run concurrently per batch.
const DefaultBatchSize = 20

// Session tracks one scan. Cancel may be called from any goroutine; the scan
// stops before its next batch.
type Session struct {
	cancelled    atomic.Bool
	totalBatches atomic.Int64
	currentBatch atomic.Int64
}

// NewSession returns a fresh, uncancelled session.
func NewSession() *Session {
	return &Session{}
}

// Cancel asks the scan to stop after the batch in flight.
func (s *Session) Cancel() { s.cancelled.Store(true) }

// Cancelled reports whether Cancel was called.
func (s *Session) Cancelled() bool { return s.cancelled.Load() }

// Progress returns the number of completed batches and the batch total.
func (s *Session) Progress() (current, total int) {
	return int(s.currentBatch.Load()), int(s.totalBatches.Load())
}

var stdLog struct {
	sync.Mutex
	depth    int
	restored io.Writer
}

// silenceStdLog discards the standard logger's output until every returned
// restore func has been called.
func silenceStdLog() (restore func()) {
	stdLog.Lock()
	defer stdLog.Unlock()
	if stdLog.depth == 0 {
		stdLog.restored = log.Writer()
		log.SetOutput(io.Discard)
	}
	stdLog.depth++

	var once sync.Once
	return func() {
		once.Do(func() {
			stdLog.Lock()
			defer stdLog.Unlock()
			stdLog.depth--
			if stdLog.depth == 0 {
				log.SetOutput(stdLog.restored)
				stdLog.restored = nil
			}
		})
	}
}

// ProgressFunc is called after each completed batch. batch is 1-based.
type ProgressFunc func(batch, totalBatches, percent int)

// Report is the outcome of a scan.
type Report struct {
	Results      []Result
	Stopped      bool
	Checked      int
	Skipped      int
	TotalBatches int
}

// Scanner checks bookmarks in sequential batches of concurrent probes.
type Scanner struct {
	Checker        Checker
	BatchSize      int
	ExcludeDomains []string
	Logger         *slog.Logger
}

// NewScanner creates a Scanner using checker.
func NewScanner(checker Checker, batchSize int, logger *slog.Logger) *Scanner {
	return &Scanner{
		Checker:   checker,
		BatchSize: batchSize,
		Logger:    logger,
	}
}

func (s *Scanner) batchSize() int {
	if s.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return s.BatchSize
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Scan probes every probeable bookmark. Results keep the input order. When
// the session is cancelled the scan returns the results of the batches
// completed so far; when ctx is cancelled the interrupted batch is dropped.
//
// The standard library logger is silenced while any scan runs, since
// net/http reports protocol errors through it. Overlapping scans share one
// silence; the original writer comes back when the last one returns.
func (s *Scanner) Scan(ctx context.Context, session *Session, bookmarks []model.Node, onProgress ProgressFunc) Report {
	if session == nil {
		session = NewSession()
	}

	defer silenceStdLog()()

	targets := make([]model.Node, 0, len(bookmarks))
	for _, b := range bookmarks {
		if b.IsFolder() || !urlnorm.Probeable(b.URL, s.ExcludeDomains) {
			continue
		}
		targets = append(targets, b)
	}

	size := s.batchSize()
	total := (len(targets) + size - 1) / size
	session.totalBatches.Store(int64(total))
	session.currentBatch.Store(0)

	report := Report{
		Skipped:      len(bookmarks) - len(targets),
		TotalBatches: total,
	}
	s.logger().Debug("starting scan", "bookmarks", len(bookmarks), "probeable", len(targets), "batches", total)

	for batch := 0; batch < total; batch++ {
		if session.Cancelled() || ctx.Err() != nil {
			report.Stopped = true
			break
		}

		start := batch * size
		end := min(start+size, len(targets))
		chunk := targets[start:end]
		found := make([]*Result, len(chunk))

		var g errgroup.Group
		for i, b := range chunk {
			g.Go(func() error {
				found[i] = s.Checker.Check(ctx, b)
				return nil
			})
		}
		_ = g.Wait()

		if ctx.Err() != nil {
			report.Stopped = true
			break
		}

		for _, r := range found {
			if r != nil {
				report.Results = append(report.Results, *r)
			}
		}
		report.Checked += len(chunk)
		session.currentBatch.Store(int64(batch + 1))

		if onProgress != nil {
			percent := min((batch+1)*size*100/len(targets), 100)
			onProgress(batch+1, total, percent)
		}
	}

	s.logger().Debug("scan finished", "checked", report.Checked, "dead", len(report.Results), "stopped", report.Stopped)
	return report
}
