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

package decoder

import (
	"errors"
	"fmt"
	"time"

	"m4o.io/parallelpbf/internal/core"
	"m4o.io/parallelpbf/internal/pb"
	"m4o.io/parallelpbf/model"
)

var (
	ErrMalformedBlock    = errors.New("malformed primitive block")
	ErrUnknownMemberType = errors.New("unknown relation member type")
)

func decodePrimitiveBlock(buf []byte, h *Handlers) error {
	blk := &pb.PrimitiveBlock{}
	if err := pb.Unmarshal(buf, blk); err != nil {
		return fmt.Errorf("unable to unmarshal primitive block: %w", err)
	}

	c := newBlockContext(blk)

	for _, pg := range blk.GetPrimitivegroup() {
		if err := c.decodeGroup(pg, h); err != nil {
			return err
		}
	}

	return nil
}

type blockContext struct {
	strings         stringTable
	granularity     int32
	latOffset       int64
	lonOffset       int64
	dateGranularity int32
}

func newBlockContext(blk *pb.PrimitiveBlock) *blockContext {
	return &blockContext{
		strings:         newStringTable(blk.GetStringtable()),
		granularity:     blk.GetGranularity(),
		latOffset:       blk.GetLatOffset(),
		lonOffset:       blk.GetLonOffset(),
		dateGranularity: blk.GetDateGranularity(),
	}
}

func (c *blockContext) decodeGroup(pg *pb.PrimitiveGroup, h *Handlers) error {
	if h.Node != nil {
		if err := c.decodeNodes(pg.GetNodes(), h.Node); err != nil {
			return err
		}

		if dense := pg.GetDense(); dense != nil {
			if err := c.decodeDenseNodes(dense, h.Node); err != nil {
				return err
			}
		}
	}

	if h.Way != nil {
		if err := c.decodeWays(pg.GetWays(), h.Way); err != nil {
			return err
		}
	}

	if h.Relation != nil {
		if err := c.decodeRelations(pg.GetRelations(), h.Relation); err != nil {
			return err
		}
	}

	if h.Changeset != nil {
		for _, cs := range pg.GetChangesets() {
			if err := h.Changeset(cs.GetId()); err != nil {
				return err
			}
		}
	}

	return nil
}

func (c *blockContext) decodeNodes(nodes []*pb.Node, fn func(*model.Node) error) error {
	for _, node := range nodes {
		tags, err := c.decodeTags(node.GetKeys(), node.GetVals())
		if err != nil {
			return err
		}

		info, err := c.decodeInfo(node.GetInfo())
		if err != nil {
			return err
		}

		n := &model.Node{
			ID:   model.ID(node.GetId()),
			Tags: tags,
			Info: info,
			Lat:  model.ToDegrees(c.latOffset, c.granularity, node.GetLat()),
			Lon:  model.ToDegrees(c.lonOffset, c.granularity, node.GetLon()),
		}

		if err := fn(n); err != nil {
			return err
		}
	}

	return nil
}

func (c *blockContext) decodeDenseNodes(nodes *pb.DenseNodes, fn func(*model.Node) error) error {
	ids := nodes.GetId()
	lats := nodes.GetLat()
	lons := nodes.GetLon()

	if len(lats) != len(ids) || len(lons) != len(ids) {
		return fmt.Errorf("dense nodes with %d ids, %d lats and %d lons: %w",
			len(ids), len(lats), len(lons), ErrMalformedBlock)
	}

	tic := c.newTagsContext(nodes.GetKeysVals())

	dic, err := c.newDenseInfoContext(nodes.GetDenseinfo(), len(ids))
	if err != nil {
		return err
	}

	var id, lat, lon core.DeltaCoder[int64]

	for i := range ids {
		tags, err := tic.decodeTags()
		if err != nil {
			return err
		}

		info, err := dic.decodeInfo(i)
		if err != nil {
			return err
		}

		n := &model.Node{
			ID:   model.ID(id.Decode(ids[i])),
			Tags: tags,
			Info: info,
			Lat:  model.ToDegrees(c.latOffset, c.granularity, lat.Decode(lats[i])),
			Lon:  model.ToDegrees(c.lonOffset, c.granularity, lon.Decode(lons[i])),
		}

		if err := fn(n); err != nil {
			return err
		}
	}

	return nil
}

func (c *blockContext) decodeWays(ways []*pb.Way, fn func(*model.Way) error) error {
	for _, way := range ways {
		refs := core.Accumulate(way.GetRefs())
		nodeIDs := make([]model.ID, len(refs))

		for j, ref := range refs {
			nodeIDs[j] = model.ID(ref)
		}

		tags, err := c.decodeTags(way.GetKeys(), way.GetVals())
		if err != nil {
			return err
		}

		info, err := c.decodeInfo(way.GetInfo())
		if err != nil {
			return err
		}

		w := &model.Way{
			ID:      model.ID(way.GetId()),
			Tags:    tags,
			Info:    info,
			NodeIDs: nodeIDs,
		}

		if err := fn(w); err != nil {
			return err
		}
	}

	return nil
}

func (c *blockContext) decodeRelations(relations []*pb.Relation, fn func(*model.Relation) error) error {
	for _, relation := range relations {
		tags, err := c.decodeTags(relation.GetKeys(), relation.GetVals())
		if err != nil {
			return err
		}

		info, err := c.decodeInfo(relation.GetInfo())
		if err != nil {
			return err
		}

		members, err := c.decodeMembers(relation)
		if err != nil {
			return err
		}

		r := &model.Relation{
			ID:      model.ID(relation.GetId()),
			Tags:    tags,
			Info:    info,
			Members: members,
		}

		if err := fn(r); err != nil {
			return err
		}
	}

	return nil
}

func (c *blockContext) decodeMembers(relation *pb.Relation) ([]model.Member, error) {
	memids := relation.GetMemids()
	memtypes := relation.GetTypes()
	memroles := relation.GetRolesSid()

	if len(memtypes) != len(memids) || len(memroles) != len(memids) {
		return nil, fmt.Errorf("relation %d with %d member ids, %d types and %d roles: %w",
			relation.GetId(), len(memids), len(memtypes), len(memroles), ErrMalformedBlock)
	}

	members := make([]model.Member, len(memids))

	var memid core.DeltaCoder[int64]

	for i := range memids {
		mt, err := decodeMemberType(memtypes[i])
		if err != nil {
			return nil, err
		}

		role, err := c.strings.get(int64(memroles[i]))
		if err != nil {
			return nil, err
		}

		members[i] = model.Member{
			ID:   model.ID(memid.Decode(memids[i])),
			Type: mt,
			Role: role,
		}
	}

	return members, nil
}

func (c *blockContext) decodeTags(keyIDs, valIDs []uint32) (map[string]string, error) {
	if len(keyIDs) != len(valIDs) {
		return nil, fmt.Errorf("%d tag keys but %d values: %w", len(keyIDs), len(valIDs), ErrMalformedBlock)
	}

	tags := make(map[string]string, len(keyIDs))

	for i, keyID := range keyIDs {
		k, err := c.strings.get(int64(keyID))
		if err != nil {
			return nil, err
		}

		v, err := c.strings.get(int64(valIDs[i]))
		if err != nil {
			return nil, err
		}

		tags[k] = v
	}

	return tags, nil
}

func (c *blockContext) decodeInfo(info *pb.Info) (*model.Info, error) {
	if info == nil {
		return nil, nil
	}

	user, err := c.strings.get(int64(info.GetUserSid()))
	if err != nil {
		return nil, err
	}

	return &model.Info{
		Version:   info.GetVersion(),
		UID:       model.UID(info.GetUid()),
		Timestamp: toTimestamp(c.dateGranularity, info.GetTimestamp()),
		Changeset: info.GetChangeset(),
		User:      user,
		Visible:   info.GetVisible(),
	}, nil
}

// denseInfoContext walks the columns of a DenseInfo. Version and visible
// are absolute, everything else is delta coded.
type denseInfoContext struct {
	present bool

	timestamp core.DeltaCoder[int64]
	changeset core.DeltaCoder[int64]
	uid       core.DeltaCoder[int32]
	userSid   core.DeltaCoder[int32]

	dateGranularity int32
	strings         stringTable
	versions        []int32
	uids            []int32
	timestamps      []int64
	changesets      []int64
	userSids        []int32
	visibilities    []bool
}

func (c *blockContext) newDenseInfoContext(di *pb.DenseInfo, n int) (*denseInfoContext, error) {
	if di == nil {
		return &denseInfoContext{}, nil
	}

	dic := &denseInfoContext{
		present:         true,
		dateGranularity: c.dateGranularity,
		strings:         c.strings,
		versions:        di.GetVersion(),
		uids:            di.GetUid(),
		timestamps:      di.GetTimestamp(),
		changesets:      di.GetChangeset(),
		userSids:        di.GetUserSid(),
		visibilities:    di.GetVisible(),
	}

	columns := []int{len(dic.versions), len(dic.uids), len(dic.timestamps), len(dic.changesets), len(dic.userSids)}
	for _, l := range columns {
		if l < n {
			return nil, fmt.Errorf("dense info column of %d for %d nodes: %w", l, n, ErrMalformedBlock)
		}
	}

	// an absent visible column means every node is visible
	if len(dic.visibilities) != 0 && len(dic.visibilities) < n {
		return nil, fmt.Errorf("dense info visible column of %d for %d nodes: %w",
			len(dic.visibilities), n, ErrMalformedBlock)
	}

	return dic, nil
}

func (dic *denseInfoContext) decodeInfo(i int) (*model.Info, error) {
	if !dic.present {
		return nil, nil
	}

	user, err := dic.strings.get(int64(dic.userSid.Decode(dic.userSids[i])))
	if err != nil {
		return nil, err
	}

	info := &model.Info{
		Version:   dic.versions[i],
		UID:       model.UID(dic.uid.Decode(dic.uids[i])),
		Timestamp: toTimestamp(dic.dateGranularity, dic.timestamp.Decode(dic.timestamps[i])),
		Changeset: dic.changeset.Decode(dic.changesets[i]),
		User:      user,
		Visible:   true,
	}

	if len(dic.visibilities) != 0 {
		info.Visible = dic.visibilities[i]
	}

	return info, nil
}

// tagsContext walks the keys_vals column of DenseNodes. Each node's pairs
// are terminated by a 0; an empty column means no node has tags.
type tagsContext struct {
	strings stringTable
	i       int
	keyVals []int32
}

func (c *blockContext) newTagsContext(keyVals []int32) *tagsContext {
	return &tagsContext{strings: c.strings, keyVals: keyVals}
}

func (tic *tagsContext) decodeTags() (map[string]string, error) {
	tags := make(map[string]string)

	if len(tic.keyVals) == 0 {
		return tags, nil
	}

	for {
		if tic.i >= len(tic.keyVals) {
			return nil, fmt.Errorf("keys_vals ended without terminator: %w", ErrMalformedBlock)
		}

		keyID := tic.keyVals[tic.i]
		if keyID == 0 {
			tic.i++

			return tags, nil
		}

		if tic.i+1 >= len(tic.keyVals) {
			return nil, fmt.Errorf("keys_vals ended inside a pair: %w", ErrMalformedBlock)
		}

		k, err := tic.strings.get(int64(keyID))
		if err != nil {
			return nil, err
		}

		v, err := tic.strings.get(int64(tic.keyVals[tic.i+1]))
		if err != nil {
			return nil, err
		}

		tags[k] = v
		tic.i += 2
	}
}

// decodeMemberType converts protobuf enum Relation_MemberType to a EntityType.
func decodeMemberType(mt pb.Relation_MemberType) (model.EntityType, error) {
	switch mt {
	case pb.Relation_NODE:
		return model.NODE, nil
	case pb.Relation_WAY:
		return model.WAY, nil
	case pb.Relation_RELATION:
		return model.RELATION, nil
	default:
		return 0, fmt.Errorf("member type %d: %w", mt, ErrUnknownMemberType)
	}
}

// toTimestamp converts a timestamp with a specific granularity, in units of
// milliseconds, to a UTC timestamp of type Time.
func toTimestamp(granularity int32, timestamp int64) time.Time {
	return time.UnixMilli(timestamp * int64(granularity)).UTC()
}
