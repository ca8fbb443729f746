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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInternIsStable(t *testing.T) {
	table := NewStringTable()

	a := table.Intern("a")
	b := table.Intern("b")

	assert.Equal(t, int32(1), a)
	assert.Equal(t, int32(2), b)
	assert.Equal(t, a, table.Intern("a"))
	assert.Equal(t, 3, table.Len())
}

func TestInternNeverReturnsZero(t *testing.T) {
	table := NewStringTable()

	empty := table.Intern("")
	assert.Positive(t, empty)
	assert.Equal(t, empty, table.Intern(""))

	s := table.Strings()
	assert.Equal(t, []byte{}, s[0])
	assert.Equal(t, []byte{}, s[empty])
}

func TestInternSize(t *testing.T) {
	table := NewStringTable()
	table.Intern("highway")
	table.Intern("highway")
	table.Intern("Straße")

	assert.Equal(t, len("highway")+len("Straße"), table.Size())
	assert.Equal(t, 14, table.Size())
}

func TestStringsOrder(t *testing.T) {
	table := NewStringTable()
	for _, s := range []string{"z", "a", "m"} {
		table.Intern(s)
	}

	assert.Equal(t, [][]byte{{}, []byte("z"), []byte("a"), []byte("m")}, table.Strings())
}

func TestInternTags(t *testing.T) {
	tags := map[string]string{"e": "f", "a": "b", "c": "d"}
	table := NewStringTable()

	keyIDs, valIDs := internTags(tags, table)

	assert.Equal(t, []uint32{1, 3, 5}, keyIDs)
	assert.Equal(t, []uint32{2, 4, 6}, valIDs)

	keyIDs, valIDs = internTags(nil, table)
	assert.Nil(t, keyIDs)
	assert.Nil(t, valIDs)
}

func TestFromTimestamp(t *testing.T) {
	ts, _ := time.Parse(time.RFC3339, "2022-02-13T20:40:22Z")

	assert.Equal(t, int64(1644784822), fromTimestamp(DateGranularityMs, ts))
	assert.Equal(t, int64(1644784822), fromTimestamp(DateGranularityMs, ts.Local()))
}
