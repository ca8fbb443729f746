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
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"m4o.io/parallelpbf/internal/pb"
)

func marshal(t *testing.T, m pb.Message) []byte {
	t.Helper()

	b, err := pb.Marshal(m)
	require.NoError(t, err)

	return b
}

func rawBlob(t *testing.T, payload []byte) []byte {
	t.Helper()

	return marshal(t, &pb.Blob{
		RawSize: proto.Int32(int32(len(payload))),
		Data:    &pb.Blob_Raw{Raw: payload},
	})
}

func frame(t *testing.T, typ string, blob []byte) []byte {
	t.Helper()

	hdr := marshal(t, &pb.BlobHeader{Type: proto.String(typ), Datasize: proto.Int32(int32(len(blob)))})

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint32(len(hdr))))
	buf.Write(hdr)
	buf.Write(blob)

	return buf.Bytes()
}

func decodeBlock(t *testing.T, blk *pb.PrimitiveBlock, h *Handlers) error {
	t.Helper()

	blob := rawBlob(t, marshal(t, blk))

	return Decode(BlobInfo{Type: OSMDataType, Size: int32(len(blob))}, blob, h)
}

func pbStringTable(s ...string) *pb.StringTable {
	st := &pb.StringTable{S: [][]byte{{}}}
	for _, v := range s {
		st.S = append(st.S, []byte(v))
	}

	return st
}
