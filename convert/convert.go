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

// Package convert maps entities to and from github.com/paulmach/osm objects.
package convert

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/paulmach/osm"

	"m4o.io/parallelpbf/model"
)

// ErrUnsupportedObject is returned by FromOSM for objects that are not a
// node, way or relation.
var ErrUnsupportedObject = errors.New("unsupported osm object")

// ToOSM converts e into the matching *osm.Node, *osm.Way or *osm.Relation.
// An entity without Info becomes a visible object with zero metadata.
func ToOSM(e model.Entity) osm.Object {
	switch v := e.(type) {
	case *model.Node:
		n := &osm.Node{
			ID:   osm.NodeID(v.ID),
			Lat:  float64(v.Lat),
			Lon:  float64(v.Lon),
			Tags: toTags(v.Tags),
		}
		n.User, n.UserID, n.Visible, n.Version, n.ChangesetID, n.Timestamp = toMeta(v.Info)

		return n
	case *model.Way:
		w := &osm.Way{
			ID:    osm.WayID(v.ID),
			Tags:  toTags(v.Tags),
			Nodes: make(osm.WayNodes, len(v.NodeIDs)),
		}
		w.User, w.UserID, w.Visible, w.Version, w.ChangesetID, w.Timestamp = toMeta(v.Info)

		for i, id := range v.NodeIDs {
			w.Nodes[i] = osm.WayNode{ID: osm.NodeID(id)}
		}

		return w
	case *model.Relation:
		r := &osm.Relation{
			ID:      osm.RelationID(v.ID),
			Tags:    toTags(v.Tags),
			Members: make(osm.Members, len(v.Members)),
		}
		r.User, r.UserID, r.Visible, r.Version, r.ChangesetID, r.Timestamp = toMeta(v.Info)

		for i, m := range v.Members {
			r.Members[i] = osm.Member{Type: toType(m.Type), Ref: int64(m.ID), Role: m.Role}
		}

		return r
	default:
		panic(fmt.Sprintf("unknown entity type %T", e))
	}
}

// FromOSM converts a node, way or relation. Objects carrying no metadata at
// all get a nil Info.
func FromOSM(o osm.Object) (model.Entity, error) {
	switch v := o.(type) {
	case *osm.Node:
		return &model.Node{
			ID:   model.ID(v.ID),
			Lat:  model.Degrees(v.Lat),
			Lon:  model.Degrees(v.Lon),
			Tags: fromTags(v.Tags),
			Info: fromMeta(v.User, v.UserID, v.Visible, v.Version, v.ChangesetID, v.Timestamp),
		}, nil
	case *osm.Way:
		ids := make([]model.ID, len(v.Nodes))
		for i, wn := range v.Nodes {
			ids[i] = model.ID(wn.ID)
		}

		return &model.Way{
			ID:      model.ID(v.ID),
			Tags:    fromTags(v.Tags),
			Info:    fromMeta(v.User, v.UserID, v.Visible, v.Version, v.ChangesetID, v.Timestamp),
			NodeIDs: ids,
		}, nil
	case *osm.Relation:
		members := make([]model.Member, len(v.Members))

		for i, m := range v.Members {
			t, err := fromType(m.Type)
			if err != nil {
				return nil, fmt.Errorf("relation %d member %d: %w", v.ID, i, err)
			}

			members[i] = model.Member{ID: model.ID(m.Ref), Type: t, Role: m.Role}
		}

		return &model.Relation{
			ID:      model.ID(v.ID),
			Tags:    fromTags(v.Tags),
			Info:    fromMeta(v.User, v.UserID, v.Visible, v.Version, v.ChangesetID, v.Timestamp),
			Members: members,
		}, nil
	default:
		return nil, fmt.Errorf("%T: %w", o, ErrUnsupportedObject)
	}
}

// toTags orders tags by key.
func toTags(tags map[string]string) osm.Tags {
	if len(tags) == 0 {
		return nil
	}

	t := make(osm.Tags, 0, len(tags))
	for _, k := range slices.Sorted(maps.Keys(tags)) {
		t = append(t, osm.Tag{Key: k, Value: tags[k]})
	}

	return t
}

func fromTags(tags osm.Tags) map[string]string {
	if len(tags) == 0 {
		return nil
	}

	return tags.Map()
}

func toMeta(info *model.Info) (string, osm.UserID, bool, int, osm.ChangesetID, time.Time) {
	if info == nil {
		return "", 0, true, 0, 0, time.Time{}
	}

	return info.User, osm.UserID(info.UID), info.Visible, int(info.Version), osm.ChangesetID(info.Changeset), info.Timestamp
}

func fromMeta(user string, uid osm.UserID, visible bool, version int, changeset osm.ChangesetID, ts time.Time) *model.Info {
	if user == "" && uid == 0 && version == 0 && changeset == 0 && ts.IsZero() {
		return nil
	}

	return &model.Info{
		Version:   int32(version),
		UID:       model.UID(uid),
		Timestamp: ts,
		Changeset: int64(changeset),
		User:      user,
		Visible:   visible,
	}
}

func toType(t model.EntityType) osm.Type {
	switch t {
	case model.NODE:
		return osm.TypeNode
	case model.WAY:
		return osm.TypeWay
	default:
		return osm.TypeRelation
	}
}

func fromType(t osm.Type) (model.EntityType, error) {
	switch t {
	case osm.TypeNode:
		return model.NODE, nil
	case osm.TypeWay:
		return model.WAY, nil
	case osm.TypeRelation:
		return model.RELATION, nil
	default:
		return 0, fmt.Errorf("member type %q: %w", t, ErrUnsupportedObject)
	}
}
