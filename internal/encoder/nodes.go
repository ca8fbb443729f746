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
	"m4o.io/parallelpbf/internal/core"
	"m4o.io/parallelpbf/internal/pb"
	"m4o.io/parallelpbf/model"
)

const (
	nodeEntrySize = 24
	tagEntrySize  = 4
)

// NodeEncoder accumulates nodes into a single DenseNodes group. Its delta
// state lives as long as the encoder, which is one block.
type NodeEncoder struct {
	table   *StringTable
	written bool

	id, lat, lon         core.DeltaCoder[int64]
	timestamp, changeset core.DeltaCoder[int64]
	uid, userSid         core.DeltaCoder[int32]

	dense pb.DenseNodes
	info  pb.DenseInfo

	tagged  bool
	infos   int
	visible bool
}

func NewNodeEncoder(table *StringTable) *NodeEncoder {
	return &NodeEncoder{table: table, visible: true}
}

// Add appends n to the group. It panics with ErrEncoderWritten once Write
// has been called.
func (e *NodeEncoder) Add(n *model.Node) {
	if e.written {
		panic(ErrEncoderWritten)
	}

	keyIDs, valIDs := internTags(n.Tags, e.table)
	for i, k := range keyIDs {
		e.dense.KeysVals = append(e.dense.KeysVals, int32(k), int32(valIDs[i]))
	}

	e.dense.KeysVals = append(e.dense.KeysVals, 0)
	e.tagged = e.tagged || len(keyIDs) > 0

	e.dense.Id = append(e.dense.Id, e.id.Encode(int64(n.ID)))
	e.dense.Lat = append(e.dense.Lat, e.lat.Encode(model.ToCoordinate(LatOffset, Granularity, n.Lat)))
	e.dense.Lon = append(e.dense.Lon, e.lon.Encode(model.ToCoordinate(LonOffset, Granularity, n.Lon)))

	e.addInfo(n.Info)
}

// addInfo fills one row of every dense info column. Nodes without metadata
// get zero values, the reserved empty user and visible.
func (e *NodeEncoder) addInfo(info *model.Info) {
	var (
		version, uid, userSid int32
		timestamp, changeset  int64
		visible               = true
	)

	if info != nil {
		e.infos++

		version = info.Version
		uid = int32(info.UID)
		userSid = e.table.Intern(info.User)
		timestamp = fromTimestamp(DateGranularityMs, info.Timestamp)
		changeset = info.Changeset
		visible = info.Visible
	}

	e.visible = e.visible && visible

	e.info.Version = append(e.info.Version, version)
	e.info.Uid = append(e.info.Uid, e.uid.Encode(uid))
	e.info.UserSid = append(e.info.UserSid, e.userSid.Encode(userSid))
	e.info.Timestamp = append(e.info.Timestamp, e.timestamp.Encode(timestamp))
	e.info.Changeset = append(e.info.Changeset, e.changeset.Encode(changeset))
	e.info.Visible = append(e.info.Visible, visible)
}

// Len is the number of nodes added.
func (e *NodeEncoder) Len() int {
	return len(e.dense.Id)
}

// EstimatedSize is a conservative estimate of the encoded group, excluding
// the shared string table.
func (e *NodeEncoder) EstimatedSize() int {
	return e.Len()*nodeEntrySize + len(e.dense.KeysVals)*tagEntrySize + e.infos*infoEntrySize
}

// Write finalizes the group. Afterwards the encoder accepts no more nodes.
func (e *NodeEncoder) Write() *pb.PrimitiveGroup {
	e.written = true

	dense := &pb.DenseNodes{
		Id:  e.dense.Id,
		Lat: e.dense.Lat,
		Lon: e.dense.Lon,
	}

	// all terminators and no tags reads back differently from no column
	if e.tagged {
		dense.KeysVals = e.dense.KeysVals
	}

	if e.infos > 0 {
		info := e.info
		if e.visible {
			info.Visible = nil
		}

		dense.Denseinfo = &info
	}

	return &pb.PrimitiveGroup{Dense: dense}
}
