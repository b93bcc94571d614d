package lpr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/arloliu/go-laser/internal/pool"
)

// Dial connects to the device described by cfg without negotiating a job.
//
// Each attempt resolves the host and tries the returned addresses in resolver
// order; the first successful TCP connection wins. When resolution fails or no
// address accepts the connection, Dial waits the retry interval and starts a
// new attempt, up to cfg.ConnectAttempts() attempts. The whole operation is
// bounded by the connect timeout.
//
// Dial returns ErrConnectTimeout, wrapping the error of the last attempt, when
// no attempt succeeded. If ctx itself is cancelled, ctx.Err() is returned.
func Dial(ctx context.Context, cfg *SessionConfig) (net.Conn, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	return dial(ctx, cfg, &SessionMetrics{})
}

func dial(ctx context.Context, cfg *SessionConfig, metrics *SessionMetrics) (net.Conn, error) {
	// watchdog for resolve+connect, disarmed on return
	wctx, cancel := context.WithTimeout(ctx, cfg.connectTimeout)
	defer cancel()

	port := strconv.Itoa(cfg.port)
	maxAttempts := cfg.ConnectAttempts()

	var (
		lastErr  error
		attempts int
	)

	for attempts < maxAttempts {
		attempts++
		metrics.incConnectAttempts()

		conn, err := dialOnce(wctx, cfg, port)
		if err == nil {
			cfg.logger.Debug("lpr: connected",
				"host", cfg.host,
				"localAddr", conn.LocalAddr(),
				"remoteAddr", conn.RemoteAddr(),
				"attempt", attempts,
			)

			return conn, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		cfg.logger.Warn("lpr: connect attempt failed",
			"host", cfg.host,
			"attempt", attempts,
			"maxAttempts", maxAttempts,
			"error", err,
		)

		if wctx.Err() != nil || attempts == maxAttempts {
			break
		}

		if err := pool.Sleep(wctx, cfg.retryInterval); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			break
		}
	}

	cfg.logger.Error("lpr: cannot connect", "host", cfg.host, "attempts", attempts)

	return nil, fmt.Errorf("%w: %s after %d attempt(s): %w", ErrConnectTimeout, cfg.host, attempts, lastErr)
}

// dialOnce performs one resolution pass and tries every candidate address.
func dialOnce(ctx context.Context, cfg *SessionConfig, port string) (net.Conn, error) {
	addrs, err := cfg.resolver.LookupHost(ctx, cfg.host)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrResolve, cfg.host, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: %s: no addresses", ErrResolve, cfg.host)
	}

	errs := make([]error, 0, len(addrs))
	for _, addr := range addrs {
		address := net.JoinHostPort(addr, port)
		cfg.logger.Debug("lpr: trying to connect", "address", address)

		conn, err := cfg.dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		return conn, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrNoCandidate, errors.Join(errs...))
}
