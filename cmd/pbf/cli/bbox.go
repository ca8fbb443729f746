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

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"m4o.io/parallelpbf/model"
)

// -- *model.BoundingBox Value
type boundingBoxValue struct {
	value **model.BoundingBox
}

// NewBoundingBoxValue creates a pflag Value for a bounding box given as
// "left,bottom,right,top" in decimal degrees.
func NewBoundingBoxValue(def *model.BoundingBox, p **model.BoundingBox) pflag.Value {
	bbv := &boundingBoxValue{value: p}
	*bbv.value = def

	return bbv
}

func (b *boundingBoxValue) Set(val string) error {
	parts := strings.Split(val, ",")
	if len(parts) != 4 {
		return fmt.Errorf("%q is not left,bottom,right,top", val)
	}

	var coords [4]model.Degrees

	for i, s := range parts {
		d, err := model.ParseDegrees(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%q is not left,bottom,right,top: %w", val, err)
		}

		coords[i] = d
	}

	bbox := &model.BoundingBox{Left: coords[0], Bottom: coords[1], Right: coords[2], Top: coords[3]}
	if err := bbox.Validate(); err != nil {
		return err
	}

	*b.value = bbox

	return nil
}

func (b *boundingBoxValue) Type() string {
	return "bbox"
}

func (b *boundingBoxValue) String() string {
	if *b.value == nil {
		return ""
	}

	return (*b.value).String()
}
