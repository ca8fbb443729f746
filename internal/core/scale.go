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

// Package core holds the low level numeric and buffer helpers shared by the
// PBF encoder and decoder.
package core

import "math"

const (
	// NanoUnit is the size of one raw coordinate unit in degrees.
	NanoUnit = 1e-9

	nanosPerUnit = 1e9
)

// Scale converts a value in degrees into nanodegrees, rounding to nearest
// with ties away from zero.
func Scale(v float64) int64 {
	return int64(math.Round(v * nanosPerUnit))
}

// Unscale converts nanodegrees back into degrees.
func Unscale(n int64) float64 {
	return float64(n) * NanoUnit
}
