// Package batch signs many digests with one key using a pool of workers.
package batch

import (
	"context"
	"encoding/json"
	"math/big"
	"runtime"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mahdiidarabi/stark-ecdsa/internal/parser"
	"github.com/mahdiidarabi/stark-ecdsa/pkg/felt"
	"github.com/mahdiidarabi/stark-ecdsa/pkg/signer"
)

// Config controls a Pool.
type Config struct {
	// Workers is the number of parallel signers (0 = auto-detect).
	Workers int

	// FailFast aborts the whole batch on the first failed request instead of
	// recording the error in that request's Result.
	FailFast bool
}

// DefaultConfig returns a configuration with one worker per CPU.
func DefaultConfig() Config {
	return Config{Workers: runtime.NumCPU()}
}

// Result is the outcome of one request.
type Result struct {
	ID        string
	Digest    *big.Int
	Signature []*big.Int // [r, s], nil when Err is set
	Err       error
}

// MarshalJSON writes digests and signatures in canonical hex.
func (r *Result) MarshalJSON() ([]byte, error) {
	out := struct {
		ID        string   `json:"id"`
		Digest    string   `json:"digest"`
		Signature []string `json:"signature,omitempty"`
		Error     string   `json:"error,omitempty"`
	}{ID: r.ID}

	if r.Digest != nil {
		out.Digest = felt.Hex(r.Digest)
	}
	for _, v := range r.Signature {
		out.Signature = append(out.Signature, felt.Hex(v))
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// Pool signs requests concurrently with a single signer.
type Pool struct {
	signer signer.TransactionSigner
	cfg    Config
	log    *zap.Logger
}

// NewPool creates a pool. A nil logger disables logging.
func NewPool(s signer.TransactionSigner, cfg Config, log *zap.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{signer: s, cfg: cfg, log: log.Named("batch")}
}

// Sign signs every request and returns results in input order. It returns
// an error only when ctx is cancelled or, with FailFast, when a request fails.
func (p *Pool) Sign(ctx context.Context, requests []*parser.Request) ([]*Result, error) {
	results := make([]*Result, len(requests))
	if len(requests) == 0 {
		return results, nil
	}

	workers := p.cfg.Workers
	if workers > len(requests) {
		workers = len(requests)
	}
	p.log.Info("signing batch", zap.Int("requests", len(requests)), zap.Int("workers", workers))

	g, gctx := errgroup.WithContext(ctx)
	work := make(chan int, workers*2)
	var failed int64

	g.Go(func() error {
		defer close(work)
		for i := range requests {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case work <- i:
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range work {
				if err := gctx.Err(); err != nil {
					return err
				}

				req := requests[i]
				res := &Result{ID: req.ID, Digest: req.Digest}
				rs, err := p.signer.SignTransactionDigest(req.Digest)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					p.log.Warn("request failed", zap.String("id", req.ID), zap.Error(err))
					if p.cfg.FailFast {
						return errors.Wrapf(err, "request %s", req.ID)
					}
					res.Err = err
				} else {
					res.Signature = rs
					p.log.Debug("request signed", zap.String("id", req.ID))
				}
				results[i] = res
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.log.Info("batch complete",
		zap.Int("requests", len(requests)),
		zap.Int64("failed", atomic.LoadInt64(&failed)))
	return results, nil
}
