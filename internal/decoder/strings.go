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
	"errors"
	"fmt"

	"m4o.io/parallelpbf/internal/pb"
)

// ErrStringIndex is returned when an entity refers past the end of the
// block's string table.
var ErrStringIndex = errors.New("string table index out of range")

// stringTable is the immutable string table of a single primitive block.
type stringTable []string

func newStringTable(st *pb.StringTable) stringTable {
	s := st.GetS()
	t := make(stringTable, len(s))

	for i, b := range s {
		t[i] = string(b)
	}

	return t
}

// get returns the string at index i.
func (t stringTable) get(i int64) (string, error) {
	if i < 0 || i >= int64(len(t)) {
		return "", fmt.Errorf("index %d of %d: %w", i, len(t), ErrStringIndex)
	}

	return t[i], nil
}
