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
	"testing"

	"github.com/stretchr/testify/assert"

	"m4o.io/parallelpbf/model"
)

func TestDegreesAngle(t *testing.T) {
	assert.True(t, model.Angle(0.78539816).EqualWithin(model.Degrees(45.0).Angle(), model.E7))
}

func TestAngleKilometers(t *testing.T) {
	// a quarter of a meridian
	assert.InDelta(t, 10_007.5, model.Degrees(90).Angle().Kilometers(), 0.1)
	assert.Zero(t, model.Degrees(0).Angle().Kilometers())
}

func TestDegreesParse(t *testing.T) {
	d, err := model.ParseDegrees("53.123450")
	if err != nil {
		t.Error(err)
	}

	assert.True(t, model.Degrees(53.123450).EqualWithin(d, model.E5))

	_, err = model.ParseDegrees("abc")
	if err == nil {
		t.Error("Parsing should have failed")
	}
}

func TestDegreesEqualWithin(t *testing.T) {
	assert.True(t, model.Degrees(53.123450).EqualWithin(model.Degrees(53.123454), model.E5))
	assert.False(t, model.Degrees(53.123450).EqualWithin(model.Degrees(53.123455), model.E5))
}

func TestDegreesString(t *testing.T) {
	assert.Equal(t, "53° 7' 24.42\"", model.Degrees(53.123450).String())
}

func TestDegreesCoordinate(t *testing.T) {
	assert.Equal(t, int64(51_693_440_000), model.Degrees(51.69344).Coordinate())
	assert.Equal(t, int64(-511_482_000), model.Degrees(-0.511482).Coordinate())
}

func TestToDegreesAndBack(t *testing.T) {
	tests := []struct {
		name        string
		offset      int64
		granularity int32
		raw         int64
		degrees     model.Degrees
	}{
		{"default granularity", 0, 100, 10_000_000, 1.0},
		{"negative", 0, 100, -20_000_000, -2.0},
		{"nanodegrees", 0, 1, 1_500_000_000, 1.5},
		{"offset", 1_000_000_000, 100, 0, 1.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := model.ToDegrees(tc.offset, tc.granularity, tc.raw)
			assert.True(t, tc.degrees.EqualWithin(d, model.E9))
			assert.Equal(t, tc.raw, model.ToCoordinate(tc.offset, tc.granularity, tc.degrees))
		})
	}
}

func TestDegreesMarshalJSON(t *testing.T) {
	b, err := model.Degrees(-0.511482).MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, "-0.511482", string(b))
}
