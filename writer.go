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

package pbf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"m4o.io/parallelpbf/internal/encoder"
	"m4o.io/parallelpbf/model"
)

var (
	// ErrWriterClosed is returned by Write after Close has been called.
	ErrWriterClosed = errors.New("writer closed")

	// ErrInvalidEntity is returned by Write for an entity that cannot be
	// encoded, such as a nil node or a relation member of unknown type.
	ErrInvalidEntity = errors.New("invalid entity")
)

// requiredFeatures are always declared by written files.
var requiredFeatures = []string{model.FeatureOsmSchema, model.FeatureDenseNodes}

// Writer encodes entities into a PBF stream. Write may be called from any
// number of goroutines; a single goroutine packs entities into blocks and
// flushes a block once its estimated size exceeds the block size limit.
type Writer struct {
	cfg   options
	log   *slog.Logger
	blobs *encoder.BlobWriter

	queue chan model.Entity
	done  chan struct{}

	mu     sync.RWMutex // guards closed and sends on queue
	closed bool

	errMu sync.Mutex
	err   error
}

// NewWriter writes the header blob to w and returns a Writer, configured
// with options, ready to accept entities.
func NewWriter(w io.Writer, opts ...Option) (*Writer, error) {
	cfg := newOptions(opts)

	hdr := model.Header{
		BoundingBox:      cfg.boundingBox,
		RequiredFeatures: append(append([]string{}, requiredFeatures...), cfg.requiredFeatures...),
		OptionalFeatures: cfg.optionalFeatures,
		WritingProgram:   cfg.writingProgram,
		Source:           cfg.source,

		OsmosisReplicationTimestamp:      cfg.replicationTimestamp,
		OsmosisReplicationSequenceNumber: cfg.replicationSequence,
		OsmosisReplicationBaseURL:        cfg.replicationBaseURL,
	}

	if hdr.BoundingBox != nil {
		if err := hdr.BoundingBox.Validate(); err != nil {
			return nil, err
		}
	}

	blobs := encoder.NewBlobWriter(w, cfg.compression)
	if err := encoder.SaveHeader(blobs, hdr); err != nil {
		return nil, err
	}

	wrtr := &Writer{
		cfg:   cfg,
		log:   cfg.logger.With("compression", cfg.compression.String()),
		blobs: blobs,
		queue: make(chan model.Entity, cfg.nCPU),
		done:  make(chan struct{}),
	}

	go wrtr.consume()

	return wrtr, nil
}

// Write queues entity for encoding, blocking while the queue is full. It
// returns ctx.Err() if ctx is done before the entity could be queued, in
// which case the entity was not written.
//
// Dense nodes store metadata column-wise. When any node of a block carries
// Info, every other node of that block reads back with a non-nil zero Info:
// version 0, empty user, the Unix epoch as timestamp, and visible. Ways and
// relations without Info read back with a nil Info.
func (w *Writer) Write(ctx context.Context, entity model.Entity) error {
	if err := validate(entity); err != nil {
		return err
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return ErrWriterClosed
	}

	if err := w.failure(); err != nil {
		return err
	}

	select {
	case w.queue <- entity:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting entities, encodes everything already queued, flushes
// the last block and returns the first error met while writing. Calling
// Close again returns the same error.
func (w *Writer) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	<-w.done

	return w.failure()
}

// consume owns the block being filled; nothing else touches it.
func (w *Writer) consume() {
	defer close(w.done)

	blk := encoder.NewBlock()

	for entity := range w.queue {
		if w.failure() != nil {
			continue // drain so that blocked writers return
		}

		blk.Add(entity)

		if blk.EstimatedSize() > w.cfg.blockSizeLimit {
			w.flush(blk)
			blk = encoder.NewBlock()
		}
	}

	if !blk.Empty() && w.failure() == nil {
		w.flush(blk)
	}
}

func (w *Writer) flush(blk *encoder.Block) {
	w.log.Debug("flushing block",
		"nodes", blk.Nodes.Len(),
		"ways", blk.Ways.Len(),
		"relations", blk.Relations.Len(),
		"estimatedSize", blk.EstimatedSize())

	if err := w.blobs.WriteBlock(blk.Build()); err != nil {
		w.log.Error("unable to write block", "error", err)
		w.fail(err)
	}
}

func (w *Writer) fail(err error) {
	w.errMu.Lock()
	defer w.errMu.Unlock()

	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) failure() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()

	return w.err
}

// validate rejects entities the encoders would panic on.
func validate(entity model.Entity) error {
	switch e := entity.(type) {
	case *model.Node:
		if e == nil {
			return fmt.Errorf("nil node: %w", ErrInvalidEntity)
		}
	case *model.Way:
		if e == nil {
			return fmt.Errorf("nil way: %w", ErrInvalidEntity)
		}
	case *model.Relation:
		if e == nil {
			return fmt.Errorf("nil relation: %w", ErrInvalidEntity)
		}

		for i, m := range e.Members {
			switch m.Type {
			case model.NODE, model.WAY, model.RELATION:
			default:
				return fmt.Errorf("relation %d member %d has type %s: %w", e.ID, i, m.Type, ErrInvalidEntity)
			}
		}
	default:
		return fmt.Errorf("nil entity: %w", ErrInvalidEntity)
	}

	return nil
}
