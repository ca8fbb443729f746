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

package decoder

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"m4o.io/parallelpbf/internal/pb"
	"m4o.io/parallelpbf/model"
)

var (
	ErrUnsupportedFeature = errors.New("unsupported required feature")
	ErrNotHeader          = errors.New("first blob is not an OSMHeader")
)

// supportedFeatures are the required features this decoder understands,
// lower cased.
var supportedFeatures = map[string]struct{}{
	strings.ToLower(model.FeatureOsmSchema):             {},
	strings.ToLower(model.FeatureDenseNodes):            {},
	strings.ToLower(model.FeatureHistoricalInformation): {},
}

// LoadHeader reads the first blob of the PBF stream, which must be the
// header, and decodes it.
func LoadHeader(reader io.Reader) (model.Header, error) {
	info, data, err := ReadNext(reader)
	if err != nil {
		return model.Header{}, err
	}

	if info.Type != OSMHeaderType {
		return model.Header{}, fmt.Errorf("got %q: %w", info.Type, ErrNotHeader)
	}

	payload, err := Unpack(data)
	if err != nil {
		return model.Header{}, err
	}

	return decodeHeader(payload)
}

func decodeHeaderBlock(buf []byte, h *Handlers) error {
	hdr, err := decodeHeader(buf)
	if err != nil {
		return err
	}

	if h.Header != nil {
		if err := h.Header(hdr); err != nil {
			return err
		}
	}

	if hdr.BoundingBox != nil && h.BoundingBox != nil {
		if err := h.BoundingBox(*hdr.BoundingBox); err != nil {
			return err
		}
	}

	return nil
}

func decodeHeader(buf []byte) (model.Header, error) {
	hb := &pb.HeaderBlock{}
	if err := pb.Unmarshal(buf, hb); err != nil {
		return model.Header{}, fmt.Errorf("unable to unmarshal header block: %w", err)
	}

	for _, feature := range hb.GetRequiredFeatures() {
		if _, ok := supportedFeatures[strings.ToLower(feature)]; !ok {
			return model.Header{}, fmt.Errorf("%q: %w", feature, ErrUnsupportedFeature)
		}
	}

	hdr := model.Header{
		RequiredFeatures:                 hb.GetRequiredFeatures(),
		OptionalFeatures:                 hb.GetOptionalFeatures(),
		WritingProgram:                   hb.GetWritingprogram(),
		Source:                           hb.GetSource(),
		OsmosisReplicationSequenceNumber: hb.GetOsmosisReplicationSequenceNumber(),
		OsmosisReplicationBaseURL:        hb.GetOsmosisReplicationBaseUrl(),
	}

	if hb.OsmosisReplicationTimestamp != nil {
		hdr.OsmosisReplicationTimestamp = time.Unix(hb.GetOsmosisReplicationTimestamp(), 0).UTC()
	}

	if bbox := hb.GetBbox(); bbox != nil {
		hdr.BoundingBox = &model.BoundingBox{
			Left:   model.ToDegrees(0, 1, bbox.GetLeft()),
			Right:  model.ToDegrees(0, 1, bbox.GetRight()),
			Top:    model.ToDegrees(0, 1, bbox.GetTop()),
			Bottom: model.ToDegrees(0, 1, bbox.GetBottom()),
		}
	}

	return hdr, nil
}
