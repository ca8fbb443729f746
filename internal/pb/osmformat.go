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

package pb

const (
	defaultGranularity     = 100
	defaultDateGranularity = 1000
	defaultInfoVersion     = -1
)

// HeaderBlock is the payload of an OSMHeader blob.
type HeaderBlock struct {
	Bbox                             *HeaderBBox
	RequiredFeatures                 []string
	OptionalFeatures                 []string
	Writingprogram                   *string
	Source                           *string
	OsmosisReplicationTimestamp      *int64
	OsmosisReplicationSequenceNumber *int64
	OsmosisReplicationBaseUrl        *string
}

func (h *HeaderBlock) GetBbox() *HeaderBBox {
	if h != nil {
		return h.Bbox
	}

	return nil
}

func (h *HeaderBlock) GetRequiredFeatures() []string {
	if h != nil {
		return h.RequiredFeatures
	}

	return nil
}

func (h *HeaderBlock) GetOptionalFeatures() []string {
	if h != nil {
		return h.OptionalFeatures
	}

	return nil
}

func (h *HeaderBlock) GetWritingprogram() string {
	if h != nil && h.Writingprogram != nil {
		return *h.Writingprogram
	}

	return ""
}

func (h *HeaderBlock) GetSource() string {
	if h != nil && h.Source != nil {
		return *h.Source
	}

	return ""
}

func (h *HeaderBlock) GetOsmosisReplicationTimestamp() int64 {
	if h != nil && h.OsmosisReplicationTimestamp != nil {
		return *h.OsmosisReplicationTimestamp
	}

	return 0
}

func (h *HeaderBlock) GetOsmosisReplicationSequenceNumber() int64 {
	if h != nil && h.OsmosisReplicationSequenceNumber != nil {
		return *h.OsmosisReplicationSequenceNumber
	}

	return 0
}

func (h *HeaderBlock) GetOsmosisReplicationBaseUrl() string {
	if h != nil && h.OsmosisReplicationBaseUrl != nil {
		return *h.OsmosisReplicationBaseUrl
	}

	return ""
}

func (h *HeaderBlock) appendTo(b []byte) []byte {
	if h.Bbox != nil {
		b = appendMessage(b, 1, h.Bbox)
	}

	b = appendStrings(b, 4, h.RequiredFeatures)
	b = appendStrings(b, 5, h.OptionalFeatures)
	b = appendString(b, 16, h.Writingprogram)
	b = appendString(b, 17, h.Source)
	b = appendScalar(b, 32, h.OsmosisReplicationTimestamp, fromInt64)
	b = appendScalar(b, 33, h.OsmosisReplicationSequenceNumber, fromInt64)

	return appendString(b, 34, h.OsmosisReplicationBaseUrl)
}

func (h *HeaderBlock) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			h.Bbox = &HeaderBBox{}

			return f.message(h.Bbox)
		case 4:
			v, err := f.bytes()
			h.RequiredFeatures = append(h.RequiredFeatures, string(v))

			return err
		case 5:
			v, err := f.bytes()
			h.OptionalFeatures = append(h.OptionalFeatures, string(v))

			return err
		case 16:
			return setString(&h.Writingprogram, f)
		case 17:
			return setString(&h.Source, f)
		case 32:
			return setScalar(&h.OsmosisReplicationTimestamp, f, asInt64)
		case 33:
			return setScalar(&h.OsmosisReplicationSequenceNumber, f, asInt64)
		case 34:
			return setString(&h.OsmosisReplicationBaseUrl, f)
		}

		return nil
	})
}

// HeaderBBox is the bounding box of the file in nanodegrees.
type HeaderBBox struct {
	Left   *int64
	Right  *int64
	Top    *int64
	Bottom *int64
}

func (x *HeaderBBox) GetLeft() int64 {
	if x != nil && x.Left != nil {
		return *x.Left
	}

	return 0
}

func (x *HeaderBBox) GetRight() int64 {
	if x != nil && x.Right != nil {
		return *x.Right
	}

	return 0
}

func (x *HeaderBBox) GetTop() int64 {
	if x != nil && x.Top != nil {
		return *x.Top
	}

	return 0
}

func (x *HeaderBBox) GetBottom() int64 {
	if x != nil && x.Bottom != nil {
		return *x.Bottom
	}

	return 0
}

func (x *HeaderBBox) appendTo(b []byte) []byte {
	b = appendScalar(b, 1, x.Left, fromSint64)
	b = appendScalar(b, 2, x.Right, fromSint64)
	b = appendScalar(b, 3, x.Top, fromSint64)

	return appendScalar(b, 4, x.Bottom, fromSint64)
}

func (x *HeaderBBox) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			return setScalar(&x.Left, f, asSint64)
		case 2:
			return setScalar(&x.Right, f, asSint64)
		case 3:
			return setScalar(&x.Top, f, asSint64)
		case 4:
			return setScalar(&x.Bottom, f, asSint64)
		}

		return nil
	})
}

// PrimitiveBlock is the payload of an OSMData blob.
type PrimitiveBlock struct {
	Stringtable     *StringTable
	Primitivegroup  []*PrimitiveGroup
	Granularity     *int32
	LatOffset       *int64
	LonOffset       *int64
	DateGranularity *int32
}

func (x *PrimitiveBlock) GetStringtable() *StringTable {
	if x != nil {
		return x.Stringtable
	}

	return nil
}

func (x *PrimitiveBlock) GetPrimitivegroup() []*PrimitiveGroup {
	if x != nil {
		return x.Primitivegroup
	}

	return nil
}

// GetGranularity returns the coordinate granularity in nanodegrees,
// defaulting to 100.
func (x *PrimitiveBlock) GetGranularity() int32 {
	if x != nil && x.Granularity != nil {
		return *x.Granularity
	}

	return defaultGranularity
}

func (x *PrimitiveBlock) GetLatOffset() int64 {
	if x != nil && x.LatOffset != nil {
		return *x.LatOffset
	}

	return 0
}

func (x *PrimitiveBlock) GetLonOffset() int64 {
	if x != nil && x.LonOffset != nil {
		return *x.LonOffset
	}

	return 0
}

// GetDateGranularity returns the timestamp granularity in milliseconds,
// defaulting to 1000.
func (x *PrimitiveBlock) GetDateGranularity() int32 {
	if x != nil && x.DateGranularity != nil {
		return *x.DateGranularity
	}

	return defaultDateGranularity
}

func (x *PrimitiveBlock) appendTo(b []byte) []byte {
	st := x.Stringtable
	if st == nil {
		st = &StringTable{}
	}

	b = appendMessage(b, 1, st)

	for _, pg := range x.Primitivegroup {
		b = appendMessage(b, 2, pg)
	}

	b = appendScalar(b, 17, x.Granularity, fromInt32)
	b = appendScalar(b, 18, x.DateGranularity, fromInt32)
	b = appendScalar(b, 19, x.LatOffset, fromInt64)

	return appendScalar(b, 20, x.LonOffset, fromInt64)
}

func (x *PrimitiveBlock) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			x.Stringtable = &StringTable{}

			return f.message(x.Stringtable)
		case 2:
			pg := &PrimitiveGroup{}
			x.Primitivegroup = append(x.Primitivegroup, pg)

			return f.message(pg)
		case 17:
			return setScalar(&x.Granularity, f, asInt32)
		case 18:
			return setScalar(&x.DateGranularity, f, asInt32)
		case 19:
			return setScalar(&x.LatOffset, f, asInt64)
		case 20:
			return setScalar(&x.LonOffset, f, asInt64)
		}

		return nil
	})
}

// PrimitiveGroup holds entities of a single kind.
type PrimitiveGroup struct {
	Nodes      []*Node
	Dense      *DenseNodes
	Ways       []*Way
	Relations  []*Relation
	Changesets []*ChangeSet
}

func (x *PrimitiveGroup) GetNodes() []*Node {
	if x != nil {
		return x.Nodes
	}

	return nil
}

func (x *PrimitiveGroup) GetDense() *DenseNodes {
	if x != nil {
		return x.Dense
	}

	return nil
}

func (x *PrimitiveGroup) GetWays() []*Way {
	if x != nil {
		return x.Ways
	}

	return nil
}

func (x *PrimitiveGroup) GetRelations() []*Relation {
	if x != nil {
		return x.Relations
	}

	return nil
}

func (x *PrimitiveGroup) GetChangesets() []*ChangeSet {
	if x != nil {
		return x.Changesets
	}

	return nil
}

func (x *PrimitiveGroup) appendTo(b []byte) []byte {
	for _, n := range x.Nodes {
		b = appendMessage(b, 1, n)
	}

	if x.Dense != nil {
		b = appendMessage(b, 2, x.Dense)
	}

	for _, w := range x.Ways {
		b = appendMessage(b, 3, w)
	}

	for _, r := range x.Relations {
		b = appendMessage(b, 4, r)
	}

	for _, c := range x.Changesets {
		b = appendMessage(b, 5, c)
	}

	return b
}

func (x *PrimitiveGroup) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			n := &Node{}
			x.Nodes = append(x.Nodes, n)

			return f.message(n)
		case 2:
			x.Dense = &DenseNodes{}

			return f.message(x.Dense)
		case 3:
			w := &Way{}
			x.Ways = append(x.Ways, w)

			return f.message(w)
		case 4:
			r := &Relation{}
			x.Relations = append(x.Relations, r)

			return f.message(r)
		case 5:
			c := &ChangeSet{}
			x.Changesets = append(x.Changesets, c)

			return f.message(c)
		}

		return nil
	})
}

// StringTable is the per block table of strings. Index 0 is reserved.
type StringTable struct {
	S [][]byte
}

func (x *StringTable) GetS() [][]byte {
	if x != nil {
		return x.S
	}

	return nil
}

func (x *StringTable) appendTo(b []byte) []byte {
	for _, s := range x.S {
		b = appendBytes(b, 1, s)
	}

	return b
}

func (x *StringTable) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.num != 1 {
			return nil
		}

		v, err := f.bytes()
		x.S = append(x.S, v)

		return err
	})
}

// Info is the optional metadata of a Node, Way or Relation.
type Info struct {
	Version   *int32
	Timestamp *int64
	Changeset *int64
	Uid       *int32
	UserSid   *uint32
	Visible   *bool
}

// GetVersion returns the version, defaulting to -1.
func (x *Info) GetVersion() int32 {
	if x != nil && x.Version != nil {
		return *x.Version
	}

	return defaultInfoVersion
}

func (x *Info) GetTimestamp() int64 {
	if x != nil && x.Timestamp != nil {
		return *x.Timestamp
	}

	return 0
}

func (x *Info) GetChangeset() int64 {
	if x != nil && x.Changeset != nil {
		return *x.Changeset
	}

	return 0
}

func (x *Info) GetUid() int32 {
	if x != nil && x.Uid != nil {
		return *x.Uid
	}

	return 0
}

func (x *Info) GetUserSid() uint32 {
	if x != nil && x.UserSid != nil {
		return *x.UserSid
	}

	return 0
}

// GetVisible returns the visible flag, defaulting to true.
func (x *Info) GetVisible() bool {
	if x != nil && x.Visible != nil {
		return *x.Visible
	}

	return true
}

func (x *Info) appendTo(b []byte) []byte {
	b = appendScalar(b, 1, x.Version, fromInt32)
	b = appendScalar(b, 2, x.Timestamp, fromInt64)
	b = appendScalar(b, 3, x.Changeset, fromInt64)
	b = appendScalar(b, 4, x.Uid, fromInt32)
	b = appendScalar(b, 5, x.UserSid, fromUint32)

	return appendScalar(b, 6, x.Visible, fromBool)
}

func (x *Info) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			return setScalar(&x.Version, f, asInt32)
		case 2:
			return setScalar(&x.Timestamp, f, asInt64)
		case 3:
			return setScalar(&x.Changeset, f, asInt64)
		case 4:
			return setScalar(&x.Uid, f, asInt32)
		case 5:
			return setScalar(&x.UserSid, f, asUint32)
		case 6:
			return setScalar(&x.Visible, f, asBool)
		}

		return nil
	})
}

// DenseInfo is the column oriented metadata of DenseNodes. Every column but
// Version and Visible is delta coded.
type DenseInfo struct {
	Version   []int32
	Timestamp []int64
	Changeset []int64
	Uid       []int32
	UserSid   []int32
	Visible   []bool
}

func (x *DenseInfo) GetVersion() []int32 {
	if x != nil {
		return x.Version
	}

	return nil
}

func (x *DenseInfo) GetTimestamp() []int64 {
	if x != nil {
		return x.Timestamp
	}

	return nil
}

func (x *DenseInfo) GetChangeset() []int64 {
	if x != nil {
		return x.Changeset
	}

	return nil
}

func (x *DenseInfo) GetUid() []int32 {
	if x != nil {
		return x.Uid
	}

	return nil
}

func (x *DenseInfo) GetUserSid() []int32 {
	if x != nil {
		return x.UserSid
	}

	return nil
}

func (x *DenseInfo) GetVisible() []bool {
	if x != nil {
		return x.Visible
	}

	return nil
}

func (x *DenseInfo) appendTo(b []byte) []byte {
	b = appendPacked(b, 1, x.Version, fromInt32)
	b = appendPacked(b, 2, x.Timestamp, fromSint64)
	b = appendPacked(b, 3, x.Changeset, fromSint64)
	b = appendPacked(b, 4, x.Uid, fromSint32)
	b = appendPacked(b, 5, x.UserSid, fromSint32)

	return appendPacked(b, 6, x.Visible, fromBool)
}

func (x *DenseInfo) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			return appendRepeated(&x.Version, f, asInt32)
		case 2:
			return appendRepeated(&x.Timestamp, f, asSint64)
		case 3:
			return appendRepeated(&x.Changeset, f, asSint64)
		case 4:
			return appendRepeated(&x.Uid, f, asSint32)
		case 5:
			return appendRepeated(&x.UserSid, f, asSint32)
		case 6:
			return appendRepeated(&x.Visible, f, asBool)
		}

		return nil
	})
}

// ChangeSet carries only the id of a changeset.
type ChangeSet struct {
	Id *int64
}

func (x *ChangeSet) GetId() int64 {
	if x != nil && x.Id != nil {
		return *x.Id
	}

	return 0
}

func (x *ChangeSet) appendTo(b []byte) []byte {
	return appendScalar(b, 1, x.Id, fromInt64)
}

func (x *ChangeSet) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.num == 1 {
			return setScalar(&x.Id, f, asInt64)
		}

		return nil
	})
}

// Node is a single, non dense, node.
type Node struct {
	Id   *int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Lat  *int64
	Lon  *int64
}

func (x *Node) GetId() int64 {
	if x != nil && x.Id != nil {
		return *x.Id
	}

	return 0
}

func (x *Node) GetKeys() []uint32 {
	if x != nil {
		return x.Keys
	}

	return nil
}

func (x *Node) GetVals() []uint32 {
	if x != nil {
		return x.Vals
	}

	return nil
}

func (x *Node) GetInfo() *Info {
	if x != nil {
		return x.Info
	}

	return nil
}

func (x *Node) GetLat() int64 {
	if x != nil && x.Lat != nil {
		return *x.Lat
	}

	return 0
}

func (x *Node) GetLon() int64 {
	if x != nil && x.Lon != nil {
		return *x.Lon
	}

	return 0
}

func (x *Node) appendTo(b []byte) []byte {
	b = appendScalar(b, 1, x.Id, fromSint64)
	b = appendPacked(b, 2, x.Keys, fromUint32)
	b = appendPacked(b, 3, x.Vals, fromUint32)

	if x.Info != nil {
		b = appendMessage(b, 4, x.Info)
	}

	b = appendScalar(b, 8, x.Lat, fromSint64)

	return appendScalar(b, 9, x.Lon, fromSint64)
}

func (x *Node) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			return setScalar(&x.Id, f, asSint64)
		case 2:
			return appendRepeated(&x.Keys, f, asUint32)
		case 3:
			return appendRepeated(&x.Vals, f, asUint32)
		case 4:
			x.Info = &Info{}

			return f.message(x.Info)
		case 8:
			return setScalar(&x.Lat, f, asSint64)
		case 9:
			return setScalar(&x.Lon, f, asSint64)
		}

		return nil
	})
}

// DenseNodes is the column oriented encoding of a run of nodes. Id, Lat and
// Lon are delta coded; KeysVals holds key/value string ids per node, each
// node terminated by a 0.
type DenseNodes struct {
	Id        []int64
	Denseinfo *DenseInfo
	Lat       []int64
	Lon       []int64
	KeysVals  []int32
}

func (x *DenseNodes) GetId() []int64 {
	if x != nil {
		return x.Id
	}

	return nil
}

func (x *DenseNodes) GetDenseinfo() *DenseInfo {
	if x != nil {
		return x.Denseinfo
	}

	return nil
}

func (x *DenseNodes) GetLat() []int64 {
	if x != nil {
		return x.Lat
	}

	return nil
}

func (x *DenseNodes) GetLon() []int64 {
	if x != nil {
		return x.Lon
	}

	return nil
}

func (x *DenseNodes) GetKeysVals() []int32 {
	if x != nil {
		return x.KeysVals
	}

	return nil
}

func (x *DenseNodes) appendTo(b []byte) []byte {
	b = appendPacked(b, 1, x.Id, fromSint64)

	if x.Denseinfo != nil {
		b = appendMessage(b, 5, x.Denseinfo)
	}

	b = appendPacked(b, 8, x.Lat, fromSint64)
	b = appendPacked(b, 9, x.Lon, fromSint64)

	return appendPacked(b, 10, x.KeysVals, fromInt32)
}

func (x *DenseNodes) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			return appendRepeated(&x.Id, f, asSint64)
		case 5:
			x.Denseinfo = &DenseInfo{}

			return f.message(x.Denseinfo)
		case 8:
			return appendRepeated(&x.Lat, f, asSint64)
		case 9:
			return appendRepeated(&x.Lon, f, asSint64)
		case 10:
			return appendRepeated(&x.KeysVals, f, asInt32)
		}

		return nil
	})
}

// Way is an ordered list of node references. Refs is delta coded.
type Way struct {
	Id   *int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Refs []int64
}

func (x *Way) GetId() int64 {
	if x != nil && x.Id != nil {
		return *x.Id
	}

	return 0
}

func (x *Way) GetKeys() []uint32 {
	if x != nil {
		return x.Keys
	}

	return nil
}

func (x *Way) GetVals() []uint32 {
	if x != nil {
		return x.Vals
	}

	return nil
}

func (x *Way) GetInfo() *Info {
	if x != nil {
		return x.Info
	}

	return nil
}

func (x *Way) GetRefs() []int64 {
	if x != nil {
		return x.Refs
	}

	return nil
}

func (x *Way) appendTo(b []byte) []byte {
	b = appendScalar(b, 1, x.Id, fromInt64)
	b = appendPacked(b, 2, x.Keys, fromUint32)
	b = appendPacked(b, 3, x.Vals, fromUint32)

	if x.Info != nil {
		b = appendMessage(b, 4, x.Info)
	}

	return appendPacked(b, 8, x.Refs, fromSint64)
}

func (x *Way) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			return setScalar(&x.Id, f, asInt64)
		case 2:
			return appendRepeated(&x.Keys, f, asUint32)
		case 3:
			return appendRepeated(&x.Vals, f, asUint32)
		case 4:
			x.Info = &Info{}

			return f.message(x.Info)
		case 8:
			return appendRepeated(&x.Refs, f, asSint64)
		}

		return nil
	})
}

// Relation_MemberType is the kind of entity a relation member refers to.
type Relation_MemberType int32

const (
	Relation_NODE     Relation_MemberType = 0
	Relation_WAY      Relation_MemberType = 1
	Relation_RELATION Relation_MemberType = 2
)

func asMemberType(v uint64) Relation_MemberType   { return Relation_MemberType(int32(v)) }
func fromMemberType(v Relation_MemberType) uint64 { return fromInt32(int32(v)) }

// Relation groups members of any kind. Memids is delta coded.
type Relation struct {
	Id       *int64
	Keys     []uint32
	Vals     []uint32
	Info     *Info
	RolesSid []int32
	Memids   []int64
	Types    []Relation_MemberType
}

func (x *Relation) GetId() int64 {
	if x != nil && x.Id != nil {
		return *x.Id
	}

	return 0
}

func (x *Relation) GetKeys() []uint32 {
	if x != nil {
		return x.Keys
	}

	return nil
}

func (x *Relation) GetVals() []uint32 {
	if x != nil {
		return x.Vals
	}

	return nil
}

func (x *Relation) GetInfo() *Info {
	if x != nil {
		return x.Info
	}

	return nil
}

func (x *Relation) GetRolesSid() []int32 {
	if x != nil {
		return x.RolesSid
	}

	return nil
}

func (x *Relation) GetMemids() []int64 {
	if x != nil {
		return x.Memids
	}

	return nil
}

func (x *Relation) GetTypes() []Relation_MemberType {
	if x != nil {
		return x.Types
	}

	return nil
}

func (x *Relation) appendTo(b []byte) []byte {
	b = appendScalar(b, 1, x.Id, fromInt64)
	b = appendPacked(b, 2, x.Keys, fromUint32)
	b = appendPacked(b, 3, x.Vals, fromUint32)

	if x.Info != nil {
		b = appendMessage(b, 4, x.Info)
	}

	b = appendPacked(b, 8, x.RolesSid, fromInt32)
	b = appendPacked(b, 9, x.Memids, fromSint64)

	return appendPacked(b, 10, x.Types, fromMemberType)
}

func (x *Relation) unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch f.num {
		case 1:
			return setScalar(&x.Id, f, asInt64)
		case 2:
			return appendRepeated(&x.Keys, f, asUint32)
		case 3:
			return appendRepeated(&x.Vals, f, asUint32)
		case 4:
			x.Info = &Info{}

			return f.message(x.Info)
		case 8:
			return appendRepeated(&x.RolesSid, f, asInt32)
		case 9:
			return appendRepeated(&x.Memids, f, asSint64)
		case 10:
			return appendRepeated(&x.Types, f, asMemberType)
		}

		return nil
	})
}

var (
	_ Message = (*HeaderBlock)(nil)
	_ Message = (*HeaderBBox)(nil)
	_ Message = (*PrimitiveBlock)(nil)
	_ Message = (*PrimitiveGroup)(nil)
	_ Message = (*StringTable)(nil)
	_ Message = (*Info)(nil)
	_ Message = (*DenseInfo)(nil)
	_ Message = (*ChangeSet)(nil)
	_ Message = (*Node)(nil)
	_ Message = (*DenseNodes)(nil)
	_ Message = (*Way)(nil)
	_ Message = (*Relation)(nil)
)
