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

package core

import "golang.org/x/exp/constraints"

// Number is any value that can be delta coded.
type Number interface {
	constraints.Integer | constraints.Float
}

// Deltas calculates the delta-encoding of the values: the first element is
// kept as is and every following element is the difference to its
// predecessor.
func Deltas[T Number](values []T) []T {
	var c DeltaCoder[T]

	deltas := make([]T, len(values))
	for i, v := range values {
		deltas[i] = c.Encode(v)
	}

	return deltas
}

// Accumulate reverses Deltas by keeping a running sum.
func Accumulate[T Number](deltas []T) []T {
	var c DeltaCoder[T]

	values := make([]T, len(deltas))
	for i, d := range deltas {
		values[i] = c.Decode(d)
	}

	return values
}

// DeltaCoder keeps the running accumulator of a streaming delta encoder or
// decoder. The zero value starts at zero.
type DeltaCoder[T Number] struct {
	prev T
}

// Encode returns the difference between v and the previously encoded value.
func (c *DeltaCoder[T]) Encode(v T) T {
	d := v - c.prev
	c.prev = v

	return d
}

// Decode adds d to the accumulator and returns the new absolute value.
func (c *DeltaCoder[T]) Decode(d T) T {
	c.prev += d

	return c.prev
}

// Reset sets the accumulator back to zero.
func (c *DeltaCoder[T]) Reset() {
	c.prev = 0
}
