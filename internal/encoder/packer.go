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

package encoder

import (
	"fmt"
	"io"
	"strings"

	"m4o.io/parallelpbf/internal/encoder/packers"
	"m4o.io/parallelpbf/internal/pb"
)

// BlobCompression is the compression applied to OSMData blob payloads.
type BlobCompression int

const (
	RAW BlobCompression = iota
	ZLIB
	LZ4
	ZSTD
)

func (c BlobCompression) String() string {
	switch c {
	case RAW:
		return "RAW"
	case ZLIB:
		return "ZLIB"
	case LZ4:
		return "LZ4"
	case ZSTD:
		return "ZSTD"
	default:
		return fmt.Sprintf("BlobCompression(%d)", int(c))
	}
}

// ParseBlobCompression maps a case-insensitive compression name, such as "zstd",
// back to its BlobCompression.
func ParseBlobCompression(s string) (BlobCompression, error) {
	for _, c := range []BlobCompression{RAW, ZLIB, LZ4, ZSTD} {
		if strings.EqualFold(c.String(), s) {
			return c, nil
		}
	}

	return 0, fmt.Errorf("unknown compression type %q", s)
}

type Packer interface {
	// WriteCloser is used to write the contents of the blob to be packed.
	// Be sure to call the Close method to ensure that all the contents are
	// packed.
	io.WriteCloser

	// SaveTo will save the packed contents to the blob using the correct
	// Protobuf data class, along with raw_size for compressed kinds.
	SaveTo(blob *pb.Blob)
}

// Pack compresses payload and wraps it into a serialized Blob.
func Pack(payload []byte, c BlobCompression) (bb []byte, err error) {
	p, err := newPacker(c)
	if err != nil {
		return nil, err
	}

	if _, err = p.Write(payload); err != nil {
		return nil, fmt.Errorf("could not compress message: %w", err)
	}

	if err = p.Close(); err != nil {
		return nil, fmt.Errorf("could not close writer: %w", err)
	}

	blob := &pb.Blob{}
	p.SaveTo(blob)

	bb, err = pb.Marshal(blob)
	if err != nil {
		return nil, fmt.Errorf("could not marshal blob data: %w", err)
	}

	return bb, nil
}

// newPacker creates the appropriate Packer for the compression.
func newPacker(c BlobCompression) (Packer, error) {
	switch c {
	case RAW:
		return packers.NewRawPacker(), nil
	case ZLIB:
		return packers.NewZlibPacker()
	case LZ4:
		return packers.NewLz4Packer(), nil
	case ZSTD:
		return packers.NewZstdPacker()
	default:
		return nil, fmt.Errorf("unknown compression type: %v", c)
	}
}
