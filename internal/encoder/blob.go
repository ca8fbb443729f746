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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"google.golang.org/protobuf/proto"

	"m4o.io/parallelpbf/internal/pb"
)

const (
	osmHeaderType = "OSMHeader"
	osmDataType   = "OSMData"

	// maxBlobSize is the hard cap on a serialized Blob.
	maxBlobSize = 32 * 1024 * 1024

	// MaxRawBlockSize caps the uncompressed payload of a data blob.
	MaxRawBlockSize = 16 * 1024 * 1024
)

var ErrBlobTooLarge = errors.New("blob exceeds the format limit")

// BlobWriter frames blobs onto an io.Writer. It is safe for concurrent use;
// every blob is written as one length, header and payload sequence.
type BlobWriter struct {
	mu          sync.Mutex
	wrtr        io.Writer
	compression BlobCompression
}

func NewBlobWriter(wrtr io.Writer, compression BlobCompression) *BlobWriter {
	return &BlobWriter{wrtr: wrtr, compression: compression}
}

// WriteData compresses payload and writes it as an OSMData blob. Payloads
// over MaxRawBlockSize are refused with ErrBlobTooLarge.
func (bw *BlobWriter) WriteData(payload []byte) error {
	if len(payload) > MaxRawBlockSize {
		return fmt.Errorf("%s payload of %d bytes: %w", osmDataType, len(payload), ErrBlobTooLarge)
	}

	bb, err := Pack(payload, bw.compression)
	if err != nil {
		return err
	}

	return bw.writeBlob(osmDataType, bb)
}

// WriteHeader writes payload, uncompressed, as an OSMHeader blob.
func (bw *BlobWriter) WriteHeader(payload []byte) error {
	bb, err := Pack(payload, RAW)
	if err != nil {
		return err
	}

	return bw.writeBlob(osmHeaderType, bb)
}

// WriteBlock marshals blk and writes it with WriteData.
func (bw *BlobWriter) WriteBlock(blk *pb.PrimitiveBlock) error {
	b, err := pb.Marshal(blk)
	if err != nil {
		return fmt.Errorf("could not marshal primitive block: %w", err)
	}

	return bw.WriteData(b)
}

// writeBlob writes the blob header and blob data of a serialized Blob.
func (bw *BlobWriter) writeBlob(typ string, bb []byte) error {
	if len(bb) > maxBlobSize {
		return fmt.Errorf("%s blob of %d bytes: %w", typ, len(bb), ErrBlobTooLarge)
	}

	hdr := &pb.BlobHeader{
		Type:     proto.String(typ),
		Datasize: proto.Int32(int32(len(bb))),
	}

	hb, err := pb.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("could not marshal blob header: %w", err)
	}

	bw.mu.Lock()
	defer bw.mu.Unlock()

	if err = binary.Write(bw.wrtr, binary.BigEndian, uint32(len(hb))); err != nil {
		return fmt.Errorf("could not write header size: %w", err)
	}

	if _, err = bw.wrtr.Write(hb); err != nil {
		return fmt.Errorf("could not write blob header: %w", err)
	}

	if _, err = bw.wrtr.Write(bb); err != nil {
		return fmt.Errorf("could not write blob data: %w", err)
	}

	return nil
}
