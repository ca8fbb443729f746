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
	relationEntrySize       = 8
	relationMemberEntrySize = 13
	relationTagEntrySize    = 8
)

// RelationEncoder accumulates relations into a single group.
type RelationEncoder struct {
	table   *StringTable
	written bool

	relations []*pb.Relation
	memid     core.DeltaCoder[int64]
	members   int
	tags      int
	infos     int
}

func NewRelationEncoder(table *StringTable) *RelationEncoder {
	return &RelationEncoder{table: table}
}

// Add appends r to the group. It panics with ErrEncoderWritten once Write
// has been called.
func (e *RelationEncoder) Add(r *model.Relation) {
	if e.written {
		panic(ErrEncoderWritten)
	}

	keyIDs, valIDs := internTags(r.Tags, e.table)

	// member IDs are delta coded within each relation
	e.memid.Reset()

	memids := make([]int64, len(r.Members))
	roles := make([]int32, len(r.Members))
	types := make([]pb.Relation_MemberType, len(r.Members))

	for i, m := range r.Members {
		memids[i] = e.memid.Encode(int64(m.ID))
		roles[i] = e.table.Intern(m.Role)
		types[i] = encodeMemberType(m.Type)
	}

	e.relations = append(e.relations, &pb.Relation{
		Id:       proto.Int64(int64(r.ID)),
		Keys:     keyIDs,
		Vals:     valIDs,
		Info:     encodeInfo(r.Info, e.table),
		RolesSid: roles,
		Memids:   memids,
		Types:    types,
	})

	e.members += len(r.Members)
	e.tags += len(keyIDs)

	if r.Info != nil {
		e.infos++
	}
}

// Len is the number of relations added.
func (e *RelationEncoder) Len() int {
	return len(e.relations)
}

// EstimatedSize is a conservative estimate of the encoded group, excluding
// the shared string table.
func (e *RelationEncoder) EstimatedSize() int {
	return len(e.relations)*relationEntrySize +
		e.members*relationMemberEntrySize +
		e.tags*relationTagEntrySize +
		e.infos*infoEntrySize
}

// Write finalizes the group. Afterwards the encoder accepts no more
// relations.
func (e *RelationEncoder) Write() *pb.PrimitiveGroup {
	e.written = true

	return &pb.PrimitiveGroup{Relations: e.relations}
}

func encodeMemberType(t model.EntityType) pb.Relation_MemberType {
	switch t {
	case model.NODE:
		return pb.Relation_NODE
	case model.WAY:
		return pb.Relation_WAY
	case model.RELATION:
		return pb.Relation_RELATION
	default:
		panic("unrecognized member type")
	}
}
