// Copyright 2025 the original author or authors.
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

package decoder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"

	"m4o.io/parallelpbf/internal/core"
	"m4o.io/parallelpbf/internal/pb"
)

var (
	ErrUnsupportedCompression = errors.New("unsupported blob compression type")
	ErrRawSizeMismatch        = errors.New("uncompressed blob size mismatch")
)

// zstdDecoder is shared by every goroutine; DecodeAll is safe for concurrent
// use. Output is capped by the capacity of the destination, which unpackZstd
// sizes to raw_size.
var zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
	return zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(0),
		zstd.WithDecoderMaxMemory(MaxBlobSize),
		zstd.WithDecodeAllCapLimit(true))
})

// Unpack parses a serialized Blob and returns its uncompressed payload.
func Unpack(data []byte) ([]byte, error) {
	buf := core.NewPooledBuffer()
	defer buf.Close()

	payload, err := unpack(buf, data)
	if err != nil {
		return nil, err
	}

	return bytes.Clone(payload), nil
}

// unpack uncompresses the blob into buf. The returned slice aliases either
// buf or data.
func unpack(buf *core.PooledBuffer, data []byte) ([]byte, error) {
	blob := &pb.Blob{}
	if err := pb.Unmarshal(data, blob); err != nil {
		return nil, fmt.Errorf("error unmarshalling blob: %w", err)
	}

	var factory func(blob *pb.Blob) (io.ReadCloser, error)

	switch blob.Data.(type) {
	case *pb.Blob_Raw:
		return blob.GetRaw(), nil
	case *pb.Blob_ZlibData:
		factory = func(b *pb.Blob) (io.ReadCloser, error) {
			return zlib.NewReader(bytes.NewReader(b.GetZlibData()))
		}
	case *pb.Blob_Lz4Data:
		factory = func(b *pb.Blob) (io.ReadCloser, error) {
			return io.NopCloser(lz4.NewReader(bytes.NewReader(b.GetLz4Data()))), nil
		}
	case *pb.Blob_ZstdData:
	case *pb.Blob_LzmaData:
		return nil, fmt.Errorf("lzma: %w", ErrUnsupportedCompression)
	case *pb.Blob_OBSOLETEBzip2Data:
		return nil, fmt.Errorf("bzip2: %w", ErrUnsupportedCompression)
	default:
		return nil, fmt.Errorf("no payload: %w", ErrUnsupportedCompression)
	}

	// raw_size is checked before anything is allocated for it
	rawSize := int(blob.GetRawSize())
	if rawSize < 0 || rawSize > MaxBlobSize {
		return nil, fmt.Errorf("raw size %d out of range: %w", rawSize, ErrRawSizeMismatch)
	}

	// zstd decodes in one shot through the shared decoder
	if factory == nil {
		return unpackZstd(buf, blob.GetZstdData(), rawSize)
	}

	if rawSize+bytes.MinRead > buf.Cap() {
		buf.Grow(rawSize + bytes.MinRead)
	}

	rdr, err := factory(blob)
	if err != nil {
		return nil, fmt.Errorf("unpacker factory error: %w", err)
	}
	defer rdr.Close()

	// one byte past raw_size is enough to detect an overlong stream
	if _, err := buf.ReadFrom(io.LimitReader(rdr, int64(rawSize)+1)); err != nil {
		return nil, fmt.Errorf("unpacker read error: %w", err)
	}

	if buf.Len() != rawSize {
		return nil, fmt.Errorf("got %d bytes but expected %d: %w", buf.Len(), rawSize, ErrRawSizeMismatch)
	}

	return buf.Bytes(), nil
}

func unpackZstd(buf *core.PooledBuffer, data []byte, rawSize int) ([]byte, error) {
	dec, err := zstdDecoder()
	if err != nil {
		return nil, fmt.Errorf("unpacker factory error: %w", err)
	}

	buf.Grow(rawSize)

	out, err := dec.DecodeAll(data, buf.Bytes()[:0:rawSize])
	if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
		return nil, fmt.Errorf("more than %d bytes: %w", rawSize, ErrRawSizeMismatch)
	}

	if err != nil {
		return nil, fmt.Errorf("unpacker read error: %w", err)
	}

	if len(out) != rawSize {
		return nil, fmt.Errorf("got %d bytes but expected %d: %w", len(out), rawSize, ErrRawSizeMismatch)
	}

	return out, nil
}
