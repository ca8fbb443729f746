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

package pb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func TestBlobHeaderWireFormat(t *testing.T) {
	h := &BlobHeader{Type: proto.String("OSMData"), Datasize: proto.Int32(5)}

	b, err := Marshal(h)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0x07, 'O', 'S', 'M', 'D', 'a', 't', 'a', 0x18, 0x05}, b)

	var got BlobHeader
	require.NoError(t, Unmarshal(b, &got))
	assert.Equal(t, "OSMData", got.GetType())
	assert.Equal(t, int32(5), got.GetDatasize())
	assert.Nil(t, got.GetIndexdata())
}

func TestNegativeInt32IsSignExtended(t *testing.T) {
	b, err := Marshal(&Info{Version: proto.Int32(-1)})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x08, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}, b)

	var got Info
	require.NoError(t, Unmarshal(b, &got))
	assert.Equal(t, int32(-1), got.GetVersion())
}

func TestPackedAndUnpackedRepeated(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"packed", []byte{0x0a, 0x02, 0x06, 0x05}},
		{"unpacked", []byte{0x08, 0x06, 0x08, 0x05}},
		{"mixed", []byte{0x08, 0x06, 0x0a, 0x01, 0x05}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dn DenseNodes
			require.NoError(t, Unmarshal(tt.in, &dn))
			assert.Equal(t, []int64{3, -3}, dn.GetId())
		})
	}
}

func TestUnknownFieldsAreSkipped(t *testing.T) {
	var cs ChangeSet
	require.NoError(t, Unmarshal([]byte{0x78, 0x01, 0x08, 0x2a}, &cs))
	assert.Equal(t, int64(42), cs.GetId())
}

func TestMalformedInput(t *testing.T) {
	t.Run("wrong wire type", func(t *testing.T) {
		var h BlobHeader
		assert.ErrorIs(t, Unmarshal([]byte{0x1a, 0x00}, &h), ErrWireType)
	})

	t.Run("truncated", func(t *testing.T) {
		var h BlobHeader
		assert.Error(t, Unmarshal([]byte{0x0a, 0x05, 'a'}, &h))
	})
}

func TestBlobOneOf(t *testing.T) {
	tests := []struct {
		name string
		data isBlob_Data
		get  func(b *Blob) []byte
	}{
		{"raw", &Blob_Raw{Raw: []byte("r")}, (*Blob).GetRaw},
		{"zlib", &Blob_ZlibData{ZlibData: []byte("z")}, (*Blob).GetZlibData},
		{"lzma", &Blob_LzmaData{LzmaData: []byte("l")}, (*Blob).GetLzmaData},
		{"lz4", &Blob_Lz4Data{Lz4Data: []byte("4")}, (*Blob).GetLz4Data},
		{"zstd", &Blob_ZstdData{ZstdData: []byte("s")}, (*Blob).GetZstdData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Marshal(&Blob{RawSize: proto.Int32(1), Data: tt.data})
			require.NoError(t, err)

			var got Blob
			require.NoError(t, Unmarshal(b, &got))
			assert.Equal(t, int32(1), got.GetRawSize())
			assert.Equal(t, tt.data, got.Data)
			assert.Equal(t, tt.get(&got), tt.get(&Blob{Data: tt.data}))
		})
	}
}

func TestPrimitiveBlockRoundTrip(t *testing.T) {
	blk := &PrimitiveBlock{
		Stringtable: &StringTable{S: [][]byte{{}, []byte("highway"), []byte("primary"), []byte("outer")}},
		Primitivegroup: []*PrimitiveGroup{
			{Dense: &DenseNodes{
				Id:  []int64{10, 1, -2},
				Lat: []int64{100, -5, 7},
				Lon: []int64{-100, 5, -7},
				Denseinfo: &DenseInfo{
					Version:   []int32{1, 2, 3},
					Timestamp: []int64{1000, 1, -1},
					Changeset: []int64{5, 0, 0},
					Uid:       []int32{-2, 0, 2},
					UserSid:   []int32{0, 0, 0},
					Visible:   []bool{true, false, true},
				},
				KeysVals: []int32{1, 2, 0, 0, 0},
			}},
			{Ways: []*Way{{Id: proto.Int64(7), Keys: []uint32{1}, Vals: []uint32{2}, Refs: []int64{1, 1, -1}}}},
			{Relations: []*Relation{{
				Id:       proto.Int64(9),
				RolesSid: []int32{3, 3},
				Memids:   []int64{2, -1},
				Types:    []Relation_MemberType{Relation_WAY, Relation_RELATION},
				Info:     &Info{Version: proto.Int32(2), Visible: proto.Bool(false)},
			}}},
			{Changesets: []*ChangeSet{{Id: proto.Int64(77)}}},
			{Nodes: []*Node{{Id: proto.Int64(-4), Lat: proto.Int64(-1), Lon: proto.Int64(1)}}},
		},
		Granularity:     proto.Int32(1),
		DateGranularity: proto.Int32(10),
		LatOffset:       proto.Int64(-3),
		LonOffset:       proto.Int64(4),
	}

	b, err := Marshal(blk)
	require.NoError(t, err)

	var got PrimitiveBlock
	require.NoError(t, Unmarshal(b, &got))
	assert.Equal(t, blk, &got)
}

func TestPrimitiveBlockDefaults(t *testing.T) {
	var blk PrimitiveBlock
	require.NoError(t, Unmarshal(nil, &blk))

	assert.Equal(t, int32(100), blk.GetGranularity())
	assert.Equal(t, int32(1000), blk.GetDateGranularity())
	assert.Equal(t, int64(0), blk.GetLatOffset())
	assert.Equal(t, int64(0), blk.GetLonOffset())
	assert.Nil(t, blk.GetStringtable().GetS())

	var info *Info
	assert.Equal(t, int32(-1), info.GetVersion())
	assert.True(t, info.GetVisible())
}

func TestHeaderBlockRoundTrip(t *testing.T) {
	hb := &HeaderBlock{
		Bbox: &HeaderBBox{
			Left:   proto.Int64(-1_000_000_000),
			Right:  proto.Int64(2_000_000_000),
			Top:    proto.Int64(3_000_000_000),
			Bottom: proto.Int64(-4_000_000_000),
		},
		RequiredFeatures:                 []string{"OsmSchema-V0.6", "DenseNodes"},
		OptionalFeatures:                 []string{"Sort.Type_then_ID"},
		Writingprogram:                   proto.String("parallelpbf"),
		Source:                           proto.String("test"),
		OsmosisReplicationTimestamp:      proto.Int64(1_700_000_000),
		OsmosisReplicationSequenceNumber: proto.Int64(42),
		OsmosisReplicationBaseUrl:        proto.String("https://example.org/replication"),
	}

	b, err := Marshal(hb)
	require.NoError(t, err)

	var got HeaderBlock
	require.NoError(t, Unmarshal(b, &got))
	assert.Equal(t, hb, &got)
}
