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
	"fmt"

	"google.golang.org/protobuf/proto"

	"m4o.io/parallelpbf/internal/pb"
	"m4o.io/parallelpbf/model"
)

// Block is the unit of output: a string table and the three encoders that
// reference its indices. A flushed Block is replaced, never reset, so the
// table and encoders always start over together.
type Block struct {
	Table     *StringTable
	Nodes     *NodeEncoder
	Ways      *WayEncoder
	Relations *RelationEncoder
}

func NewBlock() *Block {
	table := NewStringTable()

	return &Block{
		Table:     table,
		Nodes:     NewNodeEncoder(table),
		Ways:      NewWayEncoder(table),
		Relations: NewRelationEncoder(table),
	}
}

// Add routes the entity to its encoder.
func (b *Block) Add(e model.Entity) {
	switch v := e.(type) {
	case *model.Node:
		b.Nodes.Add(v)
	case *model.Way:
		b.Ways.Add(v)
	case *model.Relation:
		b.Relations.Add(v)
	default:
		panic(fmt.Sprintf("unknown entity type %T", e))
	}
}

// EstimatedSize is the combined estimate of the three encoders and the
// string table.
func (b *Block) EstimatedSize() int {
	return b.Nodes.EstimatedSize() + b.Ways.EstimatedSize() + b.Relations.EstimatedSize() + b.Table.Size()
}

// Empty reports whether nothing has been added.
func (b *Block) Empty() bool {
	return b.Nodes.Len() == 0 && b.Ways.Len() == 0 && b.Relations.Len() == 0
}

// Build writes every non-empty encoder into its own group of one
// PrimitiveBlock.
func (b *Block) Build() *pb.PrimitiveBlock {
	var groups []*pb.PrimitiveGroup

	if b.Nodes.Len() > 0 {
		groups = append(groups, b.Nodes.Write())
	}

	if b.Ways.Len() > 0 {
		groups = append(groups, b.Ways.Write())
	}

	if b.Relations.Len() > 0 {
		groups = append(groups, b.Relations.Write())
	}

	return &pb.PrimitiveBlock{
		Stringtable:     b.Table.toPb(),
		Primitivegroup:  groups,
		Granularity:     proto.Int32(Granularity),
		LatOffset:       proto.Int64(LatOffset),
		LonOffset:       proto.Int64(LonOffset),
		DateGranularity: proto.Int32(DateGranularityMs),
	}
}
