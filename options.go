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
	"log/slog"
	"runtime"
	"time"

	"m4o.io/parallelpbf/internal/encoder"
	"m4o.io/parallelpbf/model"
)

// BlobCompression is the compression applied by a Writer to OSMData blobs.
type BlobCompression = encoder.BlobCompression

// Blob compressions understood by the Writer.
const (
	RAW  = encoder.RAW
	ZLIB = encoder.ZLIB
	LZ4  = encoder.LZ4
	ZSTD = encoder.ZSTD
)

const (
	// DefaultBlobCompression is the compression used when none is configured.
	DefaultBlobCompression = ZLIB

	// DefaultBlockSizeLimit is the estimated size at which the Writer flushes
	// a block. It sits below the 16 MiB recommended blob size because the
	// estimate is approximate.
	DefaultBlockSizeLimit = 15 * 1024 * 1024

	// DefaultWritingProgram is recorded in the header of written files.
	DefaultWritingProgram = "parallelpbf"
)

// ParseBlobCompression maps a compression name such as "ZLIB" to its
// BlobCompression.
func ParseBlobCompression(s string) (BlobCompression, error) {
	return encoder.ParseBlobCompression(s)
}

// DefaultNCpu provides the default number of CPUs.
func DefaultNCpu() uint16 {
	cpus := uint16(runtime.GOMAXPROCS(-1))

	return max(cpus-1, 1)
}

// options provides optional configuration parameters for Reader and Writer
// construction. Settings that do not apply to one of them are ignored.
type options struct {
	nCPU   uint16 // decode slots of a Reader; queue capacity of a Writer
	logger *slog.Logger

	compression    BlobCompression
	blockSizeLimit int

	boundingBox      *model.BoundingBox
	requiredFeatures []string
	optionalFeatures []string
	writingProgram   string
	source           string

	replicationTimestamp time.Time
	replicationSequence  int64
	replicationBaseURL   string
}

// Option configures how we set up a Reader or a Writer.
type Option func(*options)

// WithParallelism sets the number of blobs a Reader decodes at once, and the
// number of entities a Writer queues before Write blocks.
func WithParallelism(n uint16) Option {
	return func(o *options) {
		o.nCPU = max(n, 1)
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCompression specifies the compression algorithm to use when encoding
// PBF data blobs.  The default is ZLIB; the header blob is never compressed.
func WithCompression(compression BlobCompression) Option {
	return func(o *options) {
		o.compression = compression
	}
}

// WithBlockSizeLimit sets the estimated size at which a block is flushed.
// Values outside (0, DefaultBlockSizeLimit] fall back to the default.
func WithBlockSizeLimit(n int) Option {
	return func(o *options) {
		if n <= 0 || n > DefaultBlockSizeLimit {
			n = DefaultBlockSizeLimit
		}

		o.blockSizeLimit = n
	}
}

// WithBoundingBox sets the bounding box of the PBF header.
func WithBoundingBox(bbox model.BoundingBox) Option {
	return func(o *options) {
		o.boundingBox = &bbox
	}
}

// WithRequiredFeatures adds required features to the PBF header, on top of
// OsmSchema-V0.6 and DenseNodes.
func WithRequiredFeatures(features ...string) Option {
	return func(o *options) {
		o.requiredFeatures = append(o.requiredFeatures, features...)
	}
}

// WithOptionalFeatures sets the optional features of the PBF header.
func WithOptionalFeatures(features ...string) Option {
	return func(o *options) {
		o.optionalFeatures = append(o.optionalFeatures, features...)
	}
}

// WithWritingProgram sets the writing program of the PBF header.
func WithWritingProgram(program string) Option {
	return func(o *options) {
		o.writingProgram = program
	}
}

// WithSource sets the source of the PBF header.
func WithSource(source string) Option {
	return func(o *options) {
		o.source = source
	}
}

// WithReplication sets the Osmosis replication state of the PBF header. The
// timestamp is stored in whole seconds; a zero timestamp, a zero sequence
// number and an empty URL are left out.
func WithReplication(timestamp time.Time, sequence int64, baseURL string) Option {
	return func(o *options) {
		o.replicationTimestamp = timestamp
		o.replicationSequence = sequence
		o.replicationBaseURL = baseURL
	}
}

// newOptions applies opts over the defaults.
func newOptions(opts []Option) options {
	o := options{
		nCPU:           DefaultNCpu(),
		compression:    DefaultBlobCompression,
		blockSizeLimit: DefaultBlockSizeLimit,
		writingProgram: DefaultWritingProgram,
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}

	return o
}
