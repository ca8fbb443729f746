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

package pbf

import (
	"bytes"
	"cmp"
	"context"
	"encoding/binary"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"m4o.io/parallelpbf/internal/pb"
	"m4o.io/parallelpbf/model"
)

var epoch = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

// sampleEntities builds nodes, ways referencing them and relations
// referencing the ways, in that order.
func sampleEntities(nodes, ways, relations int) []model.Entity {
	entities := make([]model.Entity, 0, nodes+ways+relations)

	for i := range nodes {
		n := &model.Node{
			ID:  model.ID(i + 1),
			Lat: model.Degrees(-60 + float64(i%12000)*0.01),
			Lon: model.Degrees(-170 + float64(i%34000)*0.01),
			Info: &model.Info{
				Version:   int32(i%5 + 1),
				UID:       model.UID(i % 17),
				User:      fmt.Sprintf("user%d", i%17),
				Timestamp: epoch.Add(time.Duration(i) * time.Second),
				Changeset: int64(1000 + i/10),
				Visible:   i%97 != 0,
			},
		}

		if i%3 == 0 {
			n.Tags = map[string]string{"amenity": "bench", "ref": fmt.Sprint(i)}
		}

		entities = append(entities, n)
	}

	for i := range ways {
		w := &model.Way{
			ID:      model.ID(i + 1),
			NodeIDs: []model.ID{model.ID(i%nodes + 1), model.ID((i+7)%nodes + 1), model.ID((i+3)%nodes + 1)},
			Tags:    map[string]string{"highway": "footway"},
		}

		if i%2 == 0 {
			w.Info = &model.Info{Version: 1, UID: 7, User: "surveyor", Timestamp: epoch, Changeset: 77, Visible: true}
		}

		entities = append(entities, w)
	}

	for i := range relations {
		entities = append(entities, &model.Relation{
			ID:   model.ID(i + 1),
			Tags: map[string]string{"type": "route", "route": "hiking"},
			Members: []model.Member{
				{ID: model.ID(i%ways + 1), Type: model.WAY, Role: "forward"},
				{ID: model.ID(i%nodes + 1), Type: model.NODE, Role: "stop"},
				{ID: model.ID(i + 100), Type: model.RELATION, Role: ""},
			},
		})
	}

	return entities
}

// writeFile encodes entities into an in-memory PBF file.
func writeFile(t testing.TB, entities []model.Entity, opts ...Option) []byte {
	t.Helper()

	var buf bytes.Buffer

	w, err := NewWriter(&buf, opts...)
	require.NoError(t, err)

	for _, e := range entities {
		require.NoError(t, w.Write(context.Background(), e))
	}

	require.NoError(t, w.Close())

	return buf.Bytes()
}

// collector gathers the entities of a Parse, whatever goroutine delivers
// them.
type collector struct {
	mu       sync.Mutex
	entities []model.Entity
}

func (c *collector) add(e model.Entity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entities = append(c.entities, e)

	return nil
}

func (c *collector) register(r *Reader) *Reader {
	return r.
		OnNode(func(n *model.Node) error { return c.add(n) }).
		OnWay(func(w *model.Way) error { return c.add(w) }).
		OnRelation(func(rel *model.Relation) error { return c.add(rel) })
}

// sorted orders entities by type then id, the order sampleEntities uses.
func (c *collector) sorted() []model.Entity {
	c.mu.Lock()
	defer c.mu.Unlock()

	rank := func(e model.Entity) int {
		switch e.(type) {
		case *model.Node:
			return 0
		case *model.Way:
			return 1
		default:
			return 2
		}
	}

	s := slices.Clone(c.entities)
	slices.SortFunc(s, func(a, b model.Entity) int {
		return cmp.Or(cmp.Compare(rank(a), rank(b)), cmp.Compare(a.GetID(), b.GetID()))
	})

	return s
}

// assertSameEntities compares decoded entities with what was written.
// Coordinates are compared to the precision of the default granularity.
func assertSameEntities(t *testing.T, expected, actual []model.Entity) {
	t.Helper()

	require.Len(t, actual, len(expected))

	for i, e := range expected {
		switch want := e.(type) {
		case *model.Node:
			got, ok := actual[i].(*model.Node)
			require.True(t, ok, "entity %d is %T", i, actual[i])

			assert.True(t, want.Lat.EqualWithin(got.Lat, model.E7), "node %d lat %v != %v", want.ID, want.Lat, got.Lat)
			assert.True(t, want.Lon.EqualWithin(got.Lon, model.E7), "node %d lon %v != %v", want.ID, want.Lon, got.Lon)

			c := *got
			c.Lat, c.Lon = want.Lat, want.Lon
			c.Tags = nilIfEmpty(c.Tags)
			assert.Equal(t, *want, c)
		case *model.Way:
			got, ok := actual[i].(*model.Way)
			require.True(t, ok, "entity %d is %T", i, actual[i])

			c := *got
			c.Tags = nilIfEmpty(c.Tags)
			assert.Equal(t, *want, c)
		case *model.Relation:
			got, ok := actual[i].(*model.Relation)
			require.True(t, ok, "entity %d is %T", i, actual[i])

			c := *got
			c.Tags = nilIfEmpty(c.Tags)
			assert.Equal(t, *want, c)
		}
	}
}

func nilIfEmpty(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return nil
	}

	return tags
}

// frame wraps a serialized Blob of the given type, the way the writer does.
func frame(t testing.TB, typ string, blob *pb.Blob) []byte {
	t.Helper()

	bb, err := pb.Marshal(blob)
	require.NoError(t, err)

	hb, err := pb.Marshal(&pb.BlobHeader{Type: proto.String(typ), Datasize: proto.Int32(int32(len(bb)))})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint32(len(hb))))
	buf.Write(hb)
	buf.Write(bb)

	return buf.Bytes()
}
