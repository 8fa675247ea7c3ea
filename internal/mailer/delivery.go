package mailer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MedSync-Fiap/notificacao-api/internal/config"
)

// defaultMaxConcurrent caps the number of simultaneous deliveries so a
// slow SMTP server cannot accumulate unbounded goroutines.
const defaultMaxConcurrent = 32

// Engine sends notification emails with bounded retries. Dispatch runs
// each delivery on its own goroutine, decoupled from the inbound
// message's acknowledgment path; SendWithRetry never returns an error to
// its caller.
type Engine struct {
	cfg         config.EmailConfig
	sender      Sender
	logger      *zap.Logger
	backoffBase time.Duration
	sem         chan struct{}
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

func NewEngine(cfg config.EmailConfig, sender Sender, logger *zap.Logger) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Engine{
		cfg:         cfg,
		sender:      sender,
		logger:      logger,
		backoffBase: 2 * time.Second,
		sem:         make(chan struct{}, defaultMaxConcurrent),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Dispatch schedules a delivery on a background goroutine and returns
// immediately. The concurrency cap is acquired inside the goroutine so
// the caller never blocks.
func (e *Engine) Dispatch(to, subject, body, eventLabel, consultaID string) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		select {
		case e.sem <- struct{}{}:
			defer func() { <-e.sem }()
		case <-e.ctx.Done():
			return
		}

		e.SendWithRetry(e.ctx, to, subject, body, eventLabel, consultaID)
	}()
}

// SendWithRetry attempts delivery up to MaxAttempts times, sleeping
// backoffBase × attemptNumber between failures (2s, 4s, 6s, …). If email
// is disabled, the sender address is unset, or the recipient is empty,
// the call is a logged no-op. Context cancellation during backoff aborts
// the remaining attempts. Terminal failure is logged, never returned.
func (e *Engine) SendWithRetry(ctx context.Context, to, subject, body, eventLabel, consultaID string) {
	if !e.cfg.Enabled || e.cfg.From == "" {
		e.logger.Debug("Email delivery disabled or sender not configured, skipping",
			zap.String("evento", eventLabel),
			zap.String("consulta_id", consultaID),
		)
		return
	}
	if to == "" {
		e.logger.Debug("Recipient email not available, skipping delivery",
			zap.String("evento", eventLabel),
			zap.String("consulta_id", consultaID),
		)
		return
	}

	msg := Message{To: to, Subject: subject, Body: body}

	var lastErr error
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		err := e.sender.Send(ctx, msg)
		if err == nil {
			e.logger.Info("Notification email sent",
				zap.String("evento", eventLabel),
				zap.String("consulta_id", consultaID),
				zap.Int("attempt", attempt),
			)
			return
		}

		lastErr = err
		e.logger.Warn("Email delivery attempt failed",
			zap.String("evento", eventLabel),
			zap.String("consulta_id", consultaID),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", e.cfg.MaxAttempts),
			zap.Error(err),
		)

		if attempt == e.cfg.MaxAttempts {
			break
		}

		select {
		case <-time.After(e.backoffBase * time.Duration(attempt)):
		case <-ctx.Done():
			e.logger.Debug("Email delivery aborted during backoff",
				zap.String("consulta_id", consultaID),
			)
			return
		}
	}

	e.logger.Error("Email delivery failed after all attempts",
		zap.String("evento", eventLabel),
		zap.String("consulta_id", consultaID),
		zap.Int("attempts", e.cfg.MaxAttempts),
		zap.Error(lastErr),
	)
}

// Close aborts in-flight backoff waits and releases pending dispatches.
func (e *Engine) Close() {
	e.cancel()
}

// Wait blocks until all dispatched deliveries have finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}
