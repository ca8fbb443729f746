// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pbf reads and writes OpenStreetMap PBF files. A Reader decodes
// blobs on a bounded number of goroutines and hands entities to registered
// callbacks; a Writer packs entities into blocks on a single goroutine.
package pbf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"m4o.io/parallelpbf/internal/decoder"
	"m4o.io/parallelpbf/model"
)

// ErrParseInProgress is returned by Parse when another Parse of the same
// Reader has not returned yet.
var ErrParseInProgress = errors.New("parse already in progress")

// Reader decodes a PBF stream in parallel. Callbacks are registered before
// Parse and may run on several goroutines at once, one per blob; the
// entities of a single blob are delivered in file order, but blobs are not
// ordered relative to each other.
type Reader struct {
	rdr io.Reader
	cfg options
	log *slog.Logger

	handlers   decoder.Handlers
	onComplete func()

	parsing      atomic.Bool
	inFlight     atomic.Int64
	peakInFlight atomic.Int64
}

// NewReader returns a Reader, configured with options, that reads from r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	cfg := newOptions(opts)

	return &Reader{
		rdr: r,
		cfg: cfg,
		log: cfg.logger,
	}
}

// OnNode registers the node callback. Without one, nodes are not decoded.
func (r *Reader) OnNode(fn func(*model.Node) error) *Reader {
	r.handlers.Node = fn
	return r
}

// OnWay registers the way callback. Without one, ways are not decoded.
func (r *Reader) OnWay(fn func(*model.Way) error) *Reader {
	r.handlers.Way = fn
	return r
}

// OnRelation registers the relation callback. Without one, relations are
// not decoded.
func (r *Reader) OnRelation(fn func(*model.Relation) error) *Reader {
	r.handlers.Relation = fn
	return r
}

// OnChangeset registers the callback receiving changeset ids.
func (r *Reader) OnChangeset(fn func(int64) error) *Reader {
	r.handlers.Changeset = fn
	return r
}

// OnHeader registers the header callback.
func (r *Reader) OnHeader(fn func(model.Header) error) *Reader {
	r.handlers.Header = fn
	return r
}

// OnBoundingBox registers the callback receiving the header's bounding box,
// when the file has one.
func (r *Reader) OnBoundingBox(fn func(model.BoundingBox) error) *Reader {
	r.handlers.BoundingBox = fn
	return r
}

// OnComplete registers the callback run once Parse has delivered every
// entity without error.
func (r *Reader) OnComplete(fn func()) *Reader {
	r.onComplete = fn
	return r
}

// Parse reads the stream to its end. At most N blobs, N being the configured
// parallelism, are held in memory at once: a slot is taken before a blob is
// read and given back when its decode finishes.
//
// A malformed frame ends the stream like EOF does. The first decode or
// callback error is returned once every running decode has finished, and
// the complete callback is then not called. Cancelling ctx stops reading
// and returns ctx.Err() after running decodes finish.
func (r *Reader) Parse(ctx context.Context) error {
	if !r.parsing.CompareAndSwap(false, true) {
		return ErrParseInProgress
	}
	defer r.parsing.Store(false)

	handlers := r.handlers
	slots := semaphore.NewWeighted(int64(r.cfg.nCPU))

	var (
		g      errgroup.Group
		stop   error
		blobs  int
		logger = r.log.With("parallelism", r.cfg.nCPU)
	)

	for {
		if err := ctx.Err(); err != nil {
			stop = err
			break
		}

		if err := slots.Acquire(ctx, 1); err != nil {
			stop = err
			break
		}

		info, data, err := decoder.ReadNext(r.rdr)
		if err != nil {
			slots.Release(1)

			if !errors.Is(err, io.EOF) {
				logger.Warn("stopped reading at malformed blob", "blob", blobs, "error", err)
			}

			break
		}

		r.acquired()

		seq := blobs
		blobs++

		g.Go(func() error {
			defer slots.Release(1)
			defer r.released()

			if err := decoder.Decode(info, data, &handlers); err != nil {
				return fmt.Errorf("blob %d: %w", seq, err)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("parse failed", "error", err)
		return err
	}

	if stop != nil {
		return stop
	}

	logger.Debug("parse complete", "blobs", blobs, "peakInFlight", r.peakInFlight.Load())

	if r.onComplete != nil {
		r.onComplete()
	}

	return nil
}

func (r *Reader) acquired() {
	n := r.inFlight.Add(1)

	for {
		peak := r.peakInFlight.Load()
		if n <= peak || r.peakInFlight.CompareAndSwap(peak, n) {
			return
		}
	}
}

func (r *Reader) released() {
	r.inFlight.Add(-1)
}

// ReadHeader reads and decodes only the header blob at the start of r.
func ReadHeader(r io.Reader) (model.Header, error) {
	hdr, err := decoder.LoadHeader(r)
	if err != nil {
		return model.Header{}, fmt.Errorf("unable to read header: %w", err)
	}

	return hdr, nil
}
