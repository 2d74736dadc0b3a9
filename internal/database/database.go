// Package database defines the session contract the gateway runs statements
// through, the statement builders, driver error classification, and the
// Establisher that opens sessions with bounded retry.
//
// Drivers (see database/mysql) implement Connector and Session and translate
// their native errors into *errs.Error. Callers never import a driver package
// except at wiring time.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/koustreak/sqlgate/internal/config"
	"github.com/koustreak/sqlgate/internal/errs"
	"github.com/koustreak/sqlgate/internal/logger"
)

// Establisher opens sessions, retrying failed connection attempts.
// It is the only component that retries.
type Establisher struct {
	connector Connector
	log       *logger.Logger
}

// NewEstablisher returns an Establisher dialing through c.
func NewEstablisher(c Connector, log *logger.Logger) *Establisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Establisher{connector: c, log: log}
}

// Acquire opens a session for cfg. It makes at most cfg.ConnectRetries
// attempts with no delay between them and returns on the first success.
// A cancelled ctx stops the loop between attempts; an attempt in progress
// is not cancelled and is bounded only by cfg.ConnectTimeout.
//
// After the last failed attempt Acquire returns an ErrKindConnectionFailed
// error carrying the attempt count, the last cause and a hint.
func (e *Establisher) Acquire(ctx context.Context, cfg config.Config) (Session, error) {
	maxAttempts := cfg.ConnectRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var (
		sess     Session
		attempts int
		lastErr  error
	)

	op := func() error {
		attempts++
		attemptCtx, cancel := attemptContext(ctx, cfg)
		defer cancel()

		s, err := e.connector.Connect(attemptCtx, cfg)
		if err != nil {
			lastErr = err
			return err
		}
		sess = s
		return nil
	}

	notify := func(err error, _ time.Duration) {
		e.log.WarnWith("connect attempt failed, retrying", err, map[string]interface{}{
			"attempt":      attempts,
			"max_attempts": maxAttempts,
			"host":         cfg.Host,
			"port":         cfg.Port,
		})
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(maxAttempts-1)),
		ctx,
	)

	err := backoff.RetryNotify(op, policy, notify)
	if err == nil {
		return sess, nil
	}

	if lastErr == nil {
		lastErr = err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, errs.Wrap(errs.ErrKindTimeout,
			fmt.Sprintf("connection cancelled after %d attempt(s)", attempts), lastErr)
	}

	cat, hint := ClassifyConnect(lastErr.Error(), cfg)
	return nil, errs.Wrap(errs.ErrKindConnectionFailed,
		fmt.Sprintf("database connection failed after %d attempt(s)", attempts), lastErr).
		Classified(cat, hint)
}

// attemptContext detaches one connect attempt from the caller's
// cancellation and bounds it by the connect timeout instead.
func attemptContext(ctx context.Context, cfg config.Config) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if cfg.ConnectTimeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, cfg.Timeout())
}
