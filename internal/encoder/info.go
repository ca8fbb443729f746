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

// Package encoder turns model entities into PBF primitive blocks and writes
// them out as framed blobs.
package encoder

import (
	"errors"
	"time"

	"google.golang.org/protobuf/proto"

	"m4o.io/parallelpbf/internal/pb"
	"m4o.io/parallelpbf/model"
)

const (
	DateGranularityMs = 1000
	Granularity       = 100
	LatOffset         = 0
	LonOffset         = 0

	// infoEntrySize is the estimated cost of the metadata of one entity.
	infoEntrySize = 24
)

// ErrEncoderWritten is the panic value raised when an entity is added to an
// encoder whose group has already been written.
var ErrEncoderWritten = errors.New("entity added to an encoder after write")

// encodeInfo converts the metadata of a way or relation.
func encodeInfo(info *model.Info, table *StringTable) *pb.Info {
	if info == nil {
		return nil
	}

	return &pb.Info{
		Version:   proto.Int32(info.Version),
		Timestamp: proto.Int64(fromTimestamp(DateGranularityMs, info.Timestamp)),
		Changeset: proto.Int64(info.Changeset),
		Uid:       proto.Int32(int32(info.UID)),
		UserSid:   proto.Uint32(uint32(table.Intern(info.User))),
		Visible:   proto.Bool(info.Visible),
	}
}

// fromTimestamp converts a timestamp to units of granularity milliseconds.
func fromTimestamp(granularity int32, timestamp time.Time) int64 {
	millis := timestamp.UnixMilli()

	return millis / int64(granularity)
}
