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

	"google.golang.org/protobuf/proto"

	"m4o.io/parallelpbf/internal/pb"
	"m4o.io/parallelpbf/model"
)

// EncodeHeader converts hdr into a HeaderBlock. Empty strings and a zero
// replication timestamp are left out.
func EncodeHeader(hdr model.Header) *pb.HeaderBlock {
	hb := &pb.HeaderBlock{
		RequiredFeatures: hdr.RequiredFeatures,
		OptionalFeatures: hdr.OptionalFeatures,
		Writingprogram:   optionalString(hdr.WritingProgram),
		Source:           optionalString(hdr.Source),

		OsmosisReplicationBaseUrl: optionalString(hdr.OsmosisReplicationBaseURL),
	}

	if bbox := hdr.BoundingBox; bbox != nil {
		hb.Bbox = &pb.HeaderBBox{
			Top:    proto.Int64(bbox.Top.Coordinate()),
			Left:   proto.Int64(bbox.Left.Coordinate()),
			Bottom: proto.Int64(bbox.Bottom.Coordinate()),
			Right:  proto.Int64(bbox.Right.Coordinate()),
		}
	}

	if !hdr.OsmosisReplicationTimestamp.IsZero() {
		hb.OsmosisReplicationTimestamp = proto.Int64(hdr.OsmosisReplicationTimestamp.Unix())
	}

	if hdr.OsmosisReplicationSequenceNumber != 0 {
		hb.OsmosisReplicationSequenceNumber = proto.Int64(hdr.OsmosisReplicationSequenceNumber)
	}

	return hb
}

// SaveHeader writes hdr as the OSMHeader blob.
func SaveHeader(bw *BlobWriter, hdr model.Header) error {
	b, err := pb.Marshal(EncodeHeader(hdr))
	if err != nil {
		return fmt.Errorf("could not marshal header: %w", err)
	}

	if err := bw.WriteHeader(b); err != nil {
		return fmt.Errorf("could not write header: %w", err)
	}

	return nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}

	return proto.String(s)
}
