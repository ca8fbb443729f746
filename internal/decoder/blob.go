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

// Package decoder reads the framing of PBF files and decodes their blobs
// into model entities.
package decoder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"m4o.io/parallelpbf/internal/core"
	"m4o.io/parallelpbf/internal/pb"
)

const (
	// MaxBlobHeaderSize is the largest BlobHeader a reader must accept.
	MaxBlobHeaderSize = 64 * 1024

	// MaxBlobSize is the largest Blob a reader must accept.
	MaxBlobSize = 32 * 1024 * 1024

	// OSMHeaderType is the BlobHeader type of the file header blob.
	OSMHeaderType = "OSMHeader"

	// OSMDataType is the BlobHeader type of a primitive block blob.
	OSMDataType = "OSMData"
)

var (
	ErrHeaderTooLarge = errors.New("blob header too large")
	ErrBlobTooLarge   = errors.New("blob too large")
)

// BlobInfo describes the blob that follows a BlobHeader.
type BlobInfo struct {
	Type string
	Size int32
}

// ReadHeaderLength reads the 4 byte big endian length that precedes every
// BlobHeader. A clean end of stream is reported as io.EOF.
func ReadHeaderLength(rdr io.Reader) (uint32, error) {
	var buf [4]byte

	if _, err := io.ReadFull(rdr, buf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, io.EOF
		}

		return 0, fmt.Errorf("error reading blob header length: %w", err)
	}

	size := binary.BigEndian.Uint32(buf[:])
	if size > MaxBlobHeaderSize {
		return 0, fmt.Errorf("blob header length %d: %w", size, ErrHeaderTooLarge)
	}

	return size, nil
}

// ReadBlobHeader reads and parses a BlobHeader of exactly size bytes.
func ReadBlobHeader(rdr io.Reader, size uint32) (BlobInfo, error) {
	buf := core.NewPooledBuffer()
	defer buf.Close()

	if n, err := io.CopyN(buf, rdr, int64(size)); err != nil {
		return BlobInfo{}, fmt.Errorf("error reading blob header: expected %d bytes, got %d: %w", size, n, err)
	}

	header := &pb.BlobHeader{}

	if err := pb.Unmarshal(buf.Bytes(), header); err != nil {
		return BlobInfo{}, fmt.Errorf("error unmarshalling blob header: %w", err)
	}

	ds := header.GetDatasize()
	if ds < 0 || ds > MaxBlobSize {
		return BlobInfo{}, fmt.Errorf("blob data size %d: %w", ds, ErrBlobTooLarge)
	}

	return BlobInfo{Type: header.GetType(), Size: ds}, nil
}

// ReadBlob reads exactly size bytes of serialized Blob.
func ReadBlob(rdr io.Reader, size int32) ([]byte, error) {
	b := make([]byte, size)

	if _, err := io.ReadFull(rdr, b); err != nil {
		return nil, fmt.Errorf("error reading blob of %d bytes: %w", size, err)
	}

	return b, nil
}

// ReadNext reads the next complete fileblock: header length, BlobHeader and
// the serialized Blob.
func ReadNext(rdr io.Reader) (BlobInfo, []byte, error) {
	size, err := ReadHeaderLength(rdr)
	if err != nil {
		return BlobInfo{}, nil, err
	}

	info, err := ReadBlobHeader(rdr, size)
	if err != nil {
		return BlobInfo{}, nil, err
	}

	data, err := ReadBlob(rdr, info.Size)
	if err != nil {
		return BlobInfo{}, nil, err
	}

	return info, data, nil
}
