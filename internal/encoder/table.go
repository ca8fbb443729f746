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
	"maps"
	"slices"

	"m4o.io/parallelpbf/internal/pb"
)

// StringTable interns the strings of one primitive block. Index 0 holds the
// empty string and is reserved as the dense nodes tag terminator, so Intern
// never returns it; not even for "".
type StringTable struct {
	index   map[string]int32
	strings []string
	size    int
}

func NewStringTable() *StringTable {
	return &StringTable{
		index:   make(map[string]int32),
		strings: []string{""},
	}
}

// Intern returns the index of s, adding it to the table on first use.
func (t *StringTable) Intern(s string) int32 {
	if i, ok := t.index[s]; ok {
		return i
	}

	i := int32(len(t.strings))
	t.index[s] = i
	t.strings = append(t.strings, s)
	t.size += len(s)

	return i
}

// Size is the total UTF-8 length of the distinct interned strings. It feeds
// the block size estimate and is not the exact wire size.
func (t *StringTable) Size() int {
	return t.size
}

// Len is the number of entries, including the reserved index 0.
func (t *StringTable) Len() int {
	return len(t.strings)
}

// Strings returns the table in index order, ready for the wire.
func (t *StringTable) Strings() [][]byte {
	s := make([][]byte, len(t.strings))
	for i, v := range t.strings {
		s[i] = []byte(v)
	}

	return s
}

func (t *StringTable) toPb() *pb.StringTable {
	return &pb.StringTable{S: t.Strings()}
}

// internTags interns the tags in key order so output does not depend on map
// iteration order.
func internTags(tags map[string]string, table *StringTable) (keyIDs []uint32, valIDs []uint32) {
	if len(tags) == 0 {
		return nil, nil
	}

	keyIDs = make([]uint32, 0, len(tags))
	valIDs = make([]uint32, 0, len(tags))

	for _, k := range slices.Sorted(maps.Keys(tags)) {
		keyIDs = append(keyIDs, uint32(table.Intern(k)))
		valIDs = append(valIDs, uint32(table.Intern(tags[k])))
	}

	return keyIDs, valIDs
}
