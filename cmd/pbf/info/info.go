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

// Package info implements the info command, which prints the header of a PBF
// file and optionally counts its entities.
package info

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	pbf "m4o.io/parallelpbf"
	"m4o.io/parallelpbf/cmd/pbf/cli"
	"m4o.io/parallelpbf/model"
)

var out io.Writer = os.Stdout

type extendedHeader struct {
	model.Header

	NodeCount     int64
	WayCount      int64
	RelationCount int64

	// NodeExtent is the box spanned by the nodes actually present.
	NodeExtent              *model.BoundingBox `json:",omitempty"`
	NodesOutsideBoundingBox int64
}

const extentShards = 64

// extent tracks the box spanned by nodes. Nodes are spread over shards by
// ID to keep decode goroutines from contending on one lock.
type extent [extentShards]struct {
	mu   sync.Mutex
	bbox *model.BoundingBox
}

func (e *extent) add(n *model.Node) {
	shard := &e[uint64(n.ID)%extentShards]

	shard.mu.Lock()
	defer shard.mu.Unlock()

	if shard.bbox == nil {
		shard.bbox = model.InitialBoundingBox()
	}

	shard.bbox.ExpandWithLatLng(n.Lat, n.Lon)
}

// merged returns the union of every shard, nil when no node was added.
func (e *extent) merged() *model.BoundingBox {
	var bbox *model.BoundingBox

	for i := range e {
		if e[i].bbox == nil {
			continue
		}

		if bbox == nil {
			bbox = model.InitialBoundingBox()
		}

		bbox.ExpandWithBoundingBox(e[i].bbox)
	}

	return bbox
}

func init() {
	cli.RootCmd.AddCommand(infoCmd)

	flags := infoCmd.Flags()
	flags.BoolP("json", "j", false, "format information in JSON")
	flags.BoolP("extended", "e", false, "provide extended information (scans entire file)")
}

var infoCmd = &cobra.Command{
	Use:   "info [<OSM file>]",
	Short: "Print information about an OSM file",
	Long:  "Print information about an OSM file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()

		extended, err := flags.GetBool("extended")
		if err != nil {
			return err
		}

		jsonfmt, err := flags.GetBool("json")
		if err != nil {
			return err
		}

		var path string
		if len(args) == 1 {
			path = args[0]
		}

		cfg := cli.Config()

		in, err := cli.OpenInput(path, cfg.Mmap, extended && !jsonfmt && path != "")
		if err != nil {
			return err
		}

		info, err := runInfo(cmd.Context(), in, cfg.Parallelism, extended)

		if cerr := in.Close(); err == nil {
			err = cerr
		}

		if err != nil {
			return err
		}

		if jsonfmt {
			return renderJSON(info, extended)
		}

		renderTxt(info, extended)

		return nil
	},
}

func runInfo(ctx context.Context, in io.Reader, ncpu uint16, extended bool) (*extendedHeader, error) {
	hdr, err := pbf.ReadHeader(in)
	if err != nil {
		return nil, err
	}

	info := &extendedHeader{Header: hdr}
	if !extended {
		return info, nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var (
		nc, wc, rc, outside atomic.Int64
		nodes               extent
	)

	err = pbf.NewReader(in, pbf.WithParallelism(ncpu)).
		OnNode(func(n *model.Node) error {
			nc.Add(1)
			nodes.add(n)

			if hdr.BoundingBox != nil && !hdr.BoundingBox.Contains(n.Lat, n.Lon) {
				outside.Add(1)
			}

			return nil
		}).
		OnWay(func(*model.Way) error {
			wc.Add(1)
			return nil
		}).
		OnRelation(func(*model.Relation) error {
			rc.Add(1)
			return nil
		}).
		Parse(ctx)
	if err != nil {
		return nil, err
	}

	info.NodeCount = nc.Load()
	info.WayCount = wc.Load()
	info.RelationCount = rc.Load()
	info.NodeExtent = nodes.merged()
	info.NodesOutsideBoundingBox = outside.Load()

	return info, nil
}

func renderJSON(info *extendedHeader, extended bool) error {
	// marshall the smallest struct needed
	var v any
	if extended {
		v = info
	} else {
		v = info.Header
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(out, string(b))

	return err
}

func renderTxt(info *extendedHeader, extended bool) {
	var bbox string
	if info.BoundingBox != nil {
		bbox = info.BoundingBox.String()
	}

	var ts string
	if !info.OsmosisReplicationTimestamp.IsZero() {
		ts = info.OsmosisReplicationTimestamp.UTC().Format(time.RFC3339)
	}

	fmt.Fprintf(out, "BoundingBox: %s\n", bbox)
	fmt.Fprintf(out, "RequiredFeatures: %s\n", strings.Join(info.RequiredFeatures, ", "))
	fmt.Fprintf(out, "OptionalFeatures: %v\n", strings.Join(info.OptionalFeatures, ", "))
	fmt.Fprintf(out, "WritingProgram: %s\n", info.WritingProgram)
	fmt.Fprintf(out, "Source: %s\n", info.Source)
	fmt.Fprintf(out, "OsmosisReplicationTimestamp: %s\n", ts)
	fmt.Fprintf(out, "OsmosisReplicationSequenceNumber: %d\n", info.OsmosisReplicationSequenceNumber)
	fmt.Fprintf(out, "OsmosisReplicationBaseURL: %s\n", info.OsmosisReplicationBaseURL)

	if extended {
		fmt.Fprintf(out, "NodeCount: %s\n", humanize.Comma(info.NodeCount))
		fmt.Fprintf(out, "WayCount: %s\n", humanize.Comma(info.WayCount))
		fmt.Fprintf(out, "RelationCount: %s\n", humanize.Comma(info.RelationCount))

		if info.NodeExtent != nil {
			fmt.Fprintf(out, "NodeExtent: %s\n", info.NodeExtent)
			fmt.Fprintf(out, "NodeExtentDiagonal: %.1f km\n", info.NodeExtent.Diagonal().Kilometers())
		}

		if info.BoundingBox != nil {
			fmt.Fprintf(out, "NodesOutsideBoundingBox: %s\n", humanize.Comma(info.NodesOutsideBoundingBox))
		}
	}
}
