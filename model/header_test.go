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

package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/parallelpbf/model"
)

func TestHeaderJSON(t *testing.T) {
	ts, err := time.Parse(time.RFC3339, "2024-10-28T14:21:30-07:00")
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   model.Header
		expected string
	}{
		{
			name: "full",
			header: model.Header{
				BoundingBox: &model.BoundingBox{
					Top:    51.69344,
					Left:   -0.511482,
					Bottom: 51.28554,
					Right:  0.335437,
				},
				RequiredFeatures:                 []string{"OsmSchema-V0.6", "DenseNodes"},
				OptionalFeatures:                 []string{"Sort.Type_then_ID"},
				WritingProgram:                   "osmium/1.14.0",
				OsmosisReplicationTimestamp:      ts,
				OsmosisReplicationSequenceNumber: 4221,
				OsmosisReplicationBaseURL:        "http://download.geofabrik.de/europe/great-britain/england/greater-london-updates",
			},
			expected: `{"bounding_box":{"top":51.69344,"left":-0.511482,"bottom":51.28554,"right":0.335437},` +
				`"required_features":["OsmSchema-V0.6","DenseNodes"],"optional_features":["Sort.Type_then_ID"],` +
				`"writing_program":"osmium/1.14.0","osmosis_replication_timestamp":"2024-10-28T14:21:30-07:00",` +
				`"osmosis_replication_sequence_number":4221,` +
				`"osmosis_replication_base_url":"http://download.geofabrik.de/europe/great-britain/england/greater-london-updates"}`,
		},
		{
			name:     "minimal",
			header:   model.Header{RequiredFeatures: []string{"OsmSchema-V0.6"}, WritingProgram: "parallelpbf"},
			expected: `{"required_features":["OsmSchema-V0.6"],"writing_program":"parallelpbf","osmosis_replication_timestamp":"0001-01-01T00:00:00Z"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.header)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(b))
		})
	}
}

func TestHeaderFeatures(t *testing.T) {
	h := &model.Header{
		RequiredFeatures: []string{model.FeatureOsmSchema, "densenodes"},
		OptionalFeatures: []string{model.FeatureSorted},
	}

	assert.True(t, h.Requires(model.FeatureOsmSchema))
	assert.True(t, h.Requires(model.FeatureDenseNodes))
	assert.False(t, h.Requires(model.FeatureHistoricalInformation))
	assert.False(t, h.Requires(model.FeatureSorted))

	assert.True(t, h.Offers("SORT.TYPE_THEN_ID"))
	assert.False(t, h.Offers(model.FeatureDenseNodes))

	assert.False(t, (&model.Header{}).Requires(model.FeatureOsmSchema))
}
