package laser

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"sync"

	"github.com/arloliu/go-laser/lpr"
	"github.com/arloliu/go-laser/pcl"
	"github.com/puzpuzpuz/xsync/v3"
)

// ErrDuplicateTarget is returned by RunAll when two targets address the same device.
var ErrDuplicateTarget = errors.New("laser: duplicate target")

// Run connects to the device described by cfg and sends prog.
//
// The session is closed on every path; a close error is joined to the job error.
func Run(ctx context.Context, cfg *lpr.SessionConfig, prog Program) (err error) {
	if cfg == nil {
		return lpr.ErrConfigNil
	}
	if err := prog.Validate(); err != nil {
		return err
	}

	log := cfg.GetLogger().With("host", cfg.Host())

	sess, err := lpr.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, sess.Close())
	}()

	log.Info("laser: job started", "strokes", len(prog.Strokes), "points", prog.PointCount())

	if err := Encode(pcl.NewEncoder(sess), prog); err != nil {
		log.Error("laser: job aborted", "error", err)
		return err
	}

	log.Info("laser: job finished", "bytes", sess.Metrics().BytesWritten.Load())

	return nil
}

// Target is one device and the program to run on it.
type Target struct {
	Config  *lpr.SessionConfig
	Program Program
}

// Key returns the "host:port" address identifying the device.
func (t Target) Key() string {
	return net.JoinHostPort(t.Config.Host(), strconv.Itoa(t.Config.Port()))
}

// Report holds the outcome of RunAll per device address.
type Report struct {
	results *xsync.MapOf[string, error]
}

// Ran reports whether the device at key was part of the run.
func (r *Report) Ran(key string) bool {
	_, ok := r.results.Load(key)
	return ok
}

// Err returns the job error of the device at key, nil on success.
func (r *Report) Err(key string) error {
	err, _ := r.results.Load(key)
	return err
}

// Len returns the number of devices in the report.
func (r *Report) Len() int {
	return r.results.Size()
}

// Failed returns the sorted keys of the devices whose job failed.
func (r *Report) Failed() []string {
	var keys []string
	r.results.Range(func(key string, err error) bool {
		if err != nil {
			keys = append(keys, key)
		}
		return true
	})
	sort.Strings(keys)

	return keys
}

// JoinedErr joins the errors of all failed devices, prefixed with their address.
func (r *Report) JoinedErr() error {
	var errs []error
	for _, key := range r.Failed() {
		err, _ := r.results.Load(key)
		errs = append(errs, fmt.Errorf("%s: %w", key, err))
	}

	return errors.Join(errs...)
}

// RunAll runs each target on its own session concurrently and waits for all
// of them. Each device can take one job at a time, so targets must address
// distinct devices.
func RunAll(ctx context.Context, targets []Target) (*Report, error) {
	seen := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if t.Config == nil {
			return nil, lpr.ErrConfigNil
		}
		key := t.Key()
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTarget, key)
		}
		seen[key] = struct{}{}
	}

	report := &Report{results: xsync.NewMapOf[string, error]()}

	var wg sync.WaitGroup
	for _, t := range targets {
		t := t
		wg.Add(1)
		go func() {
			defer wg.Done()
			report.results.Store(t.Key(), Run(ctx, t.Config, t.Program))
		}()
	}
	wg.Wait()

	return report, nil
}
