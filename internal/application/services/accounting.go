package services

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"file-share-api/internal/domain/file"
)

const (
	defaultAccountingTimeout = 5 * time.Second
	maxInflightIncrements    = 32
)

// DownloadAccountant bumps a file's download counter once a signed URL has
// been handed out. Record returns immediately; the increment runs in a
// tracked goroutine and Wait drains whatever is still in flight.
// Failures are logged and counted, never returned.
type DownloadAccountant struct {
	files    file.Repository
	logger   *zap.Logger
	mCounter *prometheus.CounterVec
	timeout  time.Duration

	wg  sync.WaitGroup
	sem chan struct{}
}

func NewDownloadAccountant(
	files file.Repository,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
	timeout time.Duration,
) *DownloadAccountant {
	if timeout <= 0 {
		timeout = defaultAccountingTimeout
	}

	return &DownloadAccountant{
		files:    files,
		logger:   logger,
		mCounter: mCounter,
		timeout:  timeout,
		sem:      make(chan struct{}, maxInflightIncrements),
	}
}

func (a *DownloadAccountant) Record(ctx context.Context, id file.ID) {
	// the request may finish before the increment does
	detached := context.WithoutCancel(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		a.sem <- struct{}{}
		defer func() { <-a.sem }()

		a.increment(detached, id)
	}()
}

// Wait blocks until every recorded download has been applied or has failed.
func (a *DownloadAccountant) Wait() {
	a.wg.Wait()
}

func (a *DownloadAccountant) increment(ctx context.Context, id file.ID) bool {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.files.IncrementDownloads(ctx, id); err != nil {
		a.logger.Warn("download accounting failed",
			zap.Stringer("file_id", id),
			zap.Error(err),
		)
		if a.mCounter != nil {
			a.mCounter.WithLabelValues("download_accounting_failed_total").Inc()
		}
		return false
	}

	return true
}
