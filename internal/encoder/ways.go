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

package encoder

import (
	"google.golang.org/protobuf/proto"

	"m4o.io/parallelpbf/internal/core"
	"m4o.io/parallelpbf/internal/pb"
	"m4o.io/parallelpbf/model"
)

const (
	wayEntrySize = 8
	// a zigzag varint delta takes up to 10 bytes
	wayRefEntrySize = 10
	wayTagEntrySize = 8
)

// WayEncoder accumulates ways into a single group.
type WayEncoder struct {
	table   *StringTable
	written bool

	ways  []*pb.Way
	refs  int
	tags  int
	infos int
}

func NewWayEncoder(table *StringTable) *WayEncoder {
	return &WayEncoder{table: table}
}

// Add appends w to the group. It panics with ErrEncoderWritten once Write
// has been called.
func (e *WayEncoder) Add(w *model.Way) {
	if e.written {
		panic(ErrEncoderWritten)
	}

	keyIDs, valIDs := internTags(w.Tags, e.table)

	ids := make([]int64, len(w.NodeIDs))
	for i, id := range w.NodeIDs {
		ids[i] = int64(id)
	}

	refs := core.Deltas(ids)

	e.ways = append(e.ways, &pb.Way{
		Id:   proto.Int64(int64(w.ID)),
		Keys: keyIDs,
		Vals: valIDs,
		Info: encodeInfo(w.Info, e.table),
		Refs: refs,
	})

	e.refs += len(refs)
	e.tags += len(keyIDs)

	if w.Info != nil {
		e.infos++
	}
}

// Len is the number of ways added.
func (e *WayEncoder) Len() int {
	return len(e.ways)
}

// EstimatedSize is a conservative estimate of the encoded group, excluding
// the shared string table.
func (e *WayEncoder) EstimatedSize() int {
	return len(e.ways)*wayEntrySize + e.refs*wayRefEntrySize + e.tags*wayTagEntrySize + e.infos*infoEntrySize
}

// Write finalizes the group. Afterwards the encoder accepts no more ways.
func (e *WayEncoder) Write() *pb.PrimitiveGroup {
	e.written = true

	return &pb.PrimitiveGroup{Ways: e.ways}
}
