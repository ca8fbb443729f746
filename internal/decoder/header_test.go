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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"m4o.io/parallelpbf/internal/pb"
	"m4o.io/parallelpbf/model"
)

func headerBlob(t *testing.T, hb *pb.HeaderBlock) []byte {
	t.Helper()

	return rawBlob(t, marshal(t, hb))
}

func TestHeaderFeatureGate(t *testing.T) {
	tests := []struct {
		name     string
		features []string
		err      error
	}{
		{"none", nil, nil},
		{"standard", []string{"OsmSchema-V0.6", "DenseNodes"}, nil},
		{"case insensitive", []string{"osmschema-v0.6", "DENSENODES", "HistoricalInformation"}, nil},
		{"unknown", []string{"OsmSchema-V0.6", "LocationsOnWays"}, ErrUnsupportedFeature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := headerBlob(t, &pb.HeaderBlock{RequiredFeatures: tt.features})

			// no header handler registered: the check runs regardless
			err := Decode(BlobInfo{Type: OSMHeaderType}, blob, &Handlers{})
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHeaderHandlers(t *testing.T) {
	hb := &pb.HeaderBlock{
		Bbox: &pb.HeaderBBox{
			Left:   proto.Int64(-511_482_000),
			Right:  proto.Int64(335_437_000),
			Top:    proto.Int64(51_693_440_000),
			Bottom: proto.Int64(51_285_540_000),
		},
		RequiredFeatures:                 []string{"OsmSchema-V0.6", "DenseNodes"},
		OptionalFeatures:                 []string{"Sort.Type_then_ID"},
		Writingprogram:                   proto.String("osmium/1.14.0"),
		OsmosisReplicationTimestamp:      proto.Int64(1_730_150_490),
		OsmosisReplicationSequenceNumber: proto.Int64(4221),
		OsmosisReplicationBaseUrl:        proto.String("http://download.geofabrik.de/europe/great-britain/england/greater-london-updates"),
	}

	var (
		hdr  model.Header
		bbox model.BoundingBox
	)

	err := Decode(BlobInfo{Type: OSMHeaderType}, headerBlob(t, hb), &Handlers{
		Header: func(h model.Header) error {
			hdr = h

			return nil
		},
		BoundingBox: func(b model.BoundingBox) error {
			bbox = b

			return nil
		},
	})
	require.NoError(t, err)

	expected := &model.BoundingBox{Top: 51.69344, Left: -0.511482, Bottom: 51.28554, Right: 0.335437}
	assert.True(t, expected.EqualWithin(&bbox, model.E9))
	require.NotNil(t, hdr.BoundingBox)
	assert.True(t, expected.EqualWithin(hdr.BoundingBox, model.E9))
	assert.Equal(t, []string{"OsmSchema-V0.6", "DenseNodes"}, hdr.RequiredFeatures)
	assert.Equal(t, []string{"Sort.Type_then_ID"}, hdr.OptionalFeatures)
	assert.Equal(t, "osmium/1.14.0", hdr.WritingProgram)
	assert.Equal(t, time.Date(2024, 10, 28, 21, 21, 30, 0, time.UTC), hdr.OsmosisReplicationTimestamp)
	assert.Equal(t, int64(4221), hdr.OsmosisReplicationSequenceNumber)
	assert.Equal(t, "http://download.geofabrik.de/europe/great-britain/england/greater-london-updates", hdr.OsmosisReplicationBaseURL)
}

func TestHeaderWithoutBoundingBox(t *testing.T) {
	called := false

	err := Decode(BlobInfo{Type: OSMHeaderType}, headerBlob(t, &pb.HeaderBlock{}), &Handlers{
		BoundingBox: func(model.BoundingBox) error {
			called = true

			return nil
		},
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestLoadHeader(t *testing.T) {
	blob := headerBlob(t, &pb.HeaderBlock{Writingprogram: proto.String("test")})

	hdr, err := LoadHeader(bytes.NewReader(frame(t, OSMHeaderType, blob)))
	require.NoError(t, err)
	assert.Equal(t, "test", hdr.WritingProgram)
	assert.Nil(t, hdr.BoundingBox)
	assert.True(t, hdr.OsmosisReplicationTimestamp.IsZero())
}

func TestLoadHeaderRejectsData(t *testing.T) {
	blob := rawBlob(t, marshal(t, &pb.PrimitiveBlock{}))

	_, err := LoadHeader(bytes.NewReader(frame(t, OSMDataType, blob)))
	assert.ErrorIs(t, err, ErrNotHeader)
}
