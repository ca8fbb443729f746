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

package model

import (
	"errors"
	"fmt"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const (
	MaxLat Degrees = 90.0
	MaxLon Degrees = 180.0
	MinLat Degrees = -90.0
	MinLon Degrees = -180.0
)

// ErrInvalidBoundingBox is returned for boxes whose edges are out of range
// or inverted.
var ErrInvalidBoundingBox = errors.New("invalid bounding box")

// BoundingBox is an axis aligned box in degrees. The PBF header carries it in
// nanodegrees.
type BoundingBox struct {
	Top    Degrees `json:"top"`
	Left   Degrees `json:"left"`
	Bottom Degrees `json:"bottom"`
	Right  Degrees `json:"right"`
}

// InitialBoundingBox creates a BoundingBox that is meant to be expanded.
func InitialBoundingBox() *BoundingBox {
	return &BoundingBox{
		Top:    MinLat,
		Left:   MaxLon,
		Bottom: MaxLat,
		Right:  MinLon,
	}
}

// Validate checks that every edge is in range and that the box is not
// inverted.
func (b *BoundingBox) Validate() error {
	switch {
	case b.Left < MinLon || b.Right > MaxLon:
		return fmt.Errorf("longitude out of range %s: %w", b, ErrInvalidBoundingBox)
	case b.Bottom < MinLat || b.Top > MaxLat:
		return fmt.Errorf("latitude out of range %s: %w", b, ErrInvalidBoundingBox)
	case b.Left > b.Right || b.Bottom > b.Top:
		return fmt.Errorf("inverted %s: %w", b, ErrInvalidBoundingBox)
	}

	return nil
}

// EqualWithin checks if two bounding boxes are within a specific epsilon.
func (b *BoundingBox) EqualWithin(o *BoundingBox, eps Epsilon) bool {
	return b.Left.EqualWithin(o.Left, eps) &&
		b.Right.EqualWithin(o.Right, eps) &&
		b.Top.EqualWithin(o.Top, eps) &&
		b.Bottom.EqualWithin(o.Bottom, eps)
}

// Contains checks if the bounding box contains the lat lng point.
func (b *BoundingBox) Contains(lat Degrees, lng Degrees) bool {
	return b.Left <= lng && lng <= b.Right && b.Bottom <= lat && lat <= b.Top
}

// ExpandWithLatLng grows the box to include the point.
func (b *BoundingBox) ExpandWithLatLng(lat, lng Degrees) {
	b.Top = max(b.Top, lat)
	b.Bottom = min(b.Bottom, lat)
	b.Left = min(b.Left, lng)
	b.Right = max(b.Right, lng)
}

// ExpandWithBoundingBox grows the box to include bbox.
func (b *BoundingBox) ExpandWithBoundingBox(bbox *BoundingBox) {
	b.Top = max(b.Top, bbox.Top)
	b.Bottom = min(b.Bottom, bbox.Bottom)
	b.Left = min(b.Left, bbox.Left)
	b.Right = max(b.Right, bbox.Right)
}

// Diagonal is the great circle angle between the south west and north east
// corners.
func (b *BoundingBox) Diagonal() Angle {
	sw := s2.LatLng{Lat: s1.Angle(b.Bottom.Angle()), Lng: s1.Angle(b.Left.Angle())}
	ne := s2.LatLng{Lat: s1.Angle(b.Top.Angle()), Lng: s1.Angle(b.Right.Angle())}

	return Angle(sw.Distance(ne))
}

func (b *BoundingBox) String() string {
	return fmt.Sprintf("[(%s, %s) (%s, %s)]",
		ftoa(float64(b.Top)), ftoa(float64(b.Left)),
		ftoa(float64(b.Bottom)), ftoa(float64(b.Right)))
}
