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

// Package cp implements the copy command, which re-encodes a PBF file with a
// different compression, block size or bounding box.
package cp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync/atomic"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	pbf "m4o.io/parallelpbf"
	"m4o.io/parallelpbf/cmd/pbf/cli"
	"m4o.io/parallelpbf/model"
)

var bbox *model.BoundingBox

func init() {
	cli.RootCmd.AddCommand(copyCmd)

	flags := copyCmd.Flags()
	flags.String("compression", "", "blob compression: raw, zlib, lz4 or zstd (default from config)")
	flags.Int("block-size", 0, "uncompressed block size limit in bytes (default from config)")
	flags.String("writing-program", "", "writing program recorded in the header")
	flags.Var(cli.NewBoundingBoxValue(nil, &bbox), "bbox", "bounding box as left,bottom,right,top (default from input)")
}

type stats struct {
	nodes, ways, relations int64
}

var copyCmd = &cobra.Command{
	Use:     "copy <in> <out>",
	Aliases: []string{"cp"},
	Short:   "Copy an OSM file, re-encoding its blobs",
	Long: "Copy an OSM file, re-encoding its blobs. Entities are decoded in parallel " +
		"and written to <out>, or stdout when <out> is \"-\". The header, replication " +
		"state included, is carried over; the Sort.Type_then_ID feature is dropped.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := cli.Config()
		flags := cmd.Flags()

		compression := cfg.Compression
		if flags.Changed("compression") {
			compression, _ = flags.GetString("compression")
		}

		c, err := pbf.ParseBlobCompression(compression)
		if err != nil {
			return err
		}

		blockSize := cfg.BlockSizeLimit
		if flags.Changed("block-size") {
			blockSize, _ = flags.GetInt("block-size")
		}

		program := cfg.WritingProgram
		if flags.Changed("writing-program") {
			program, _ = flags.GetString("writing-program")
		}

		in, err := cli.OpenInput(args[0], cfg.Mmap, args[1] != "-")
		if err != nil {
			return err
		}
		defer in.Close()

		var w io.Writer = os.Stdout

		if args[1] != "-" {
			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			w = f
		}

		s, err := runCopy(cmd.Context(), in, w, bbox,
			pbf.WithParallelism(cfg.Parallelism),
			pbf.WithCompression(c),
			pbf.WithBlockSizeLimit(blockSize),
			pbf.WithWritingProgram(program))
		if err != nil {
			return err
		}

		slog.Info("copy complete",
			"input", in.Name,
			"output", args[1],
			"nodes", humanize.Comma(s.nodes),
			"ways", humanize.Comma(s.ways),
			"relations", humanize.Comma(s.relations))

		return nil
	},
}

// runCopy re-encodes the PBF stream in into out. The header of in is
// carried over, replication state included; override replaces its bounding
// box when set.
func runCopy(ctx context.Context, in io.Reader, out io.Writer, override *model.BoundingBox, opts ...pbf.Option) (stats, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	hdr, err := pbf.ReadHeader(in)
	if err != nil {
		return stats{}, err
	}

	if override != nil {
		hdr.BoundingBox = override
	}

	if hdr.BoundingBox != nil {
		opts = append(opts, pbf.WithBoundingBox(*hdr.BoundingBox))
	}

	// the writer declares the base features itself
	required := slices.DeleteFunc(slices.Clone(hdr.RequiredFeatures), func(f string) bool {
		return strings.EqualFold(f, model.FeatureOsmSchema) || strings.EqualFold(f, model.FeatureDenseNodes)
	})

	// blobs are decoded in parallel so the output is no longer sorted
	optional := slices.DeleteFunc(slices.Clone(hdr.OptionalFeatures), func(f string) bool {
		return strings.EqualFold(f, model.FeatureSorted)
	})

	if hdr.Offers(model.FeatureSorted) {
		slog.Debug("dropping optional feature", "feature", model.FeatureSorted)
	}

	opts = append(opts,
		pbf.WithRequiredFeatures(required...),
		pbf.WithOptionalFeatures(optional...),
		pbf.WithSource(hdr.Source),
		pbf.WithReplication(hdr.OsmosisReplicationTimestamp,
			hdr.OsmosisReplicationSequenceNumber, hdr.OsmosisReplicationBaseURL))

	w, err := pbf.NewWriter(out, opts...)
	if err != nil {
		return stats{}, err
	}

	var nodes, ways, relations atomic.Int64

	err = pbf.NewReader(in, opts...).
		OnNode(func(n *model.Node) error {
			nodes.Add(1)
			return w.Write(ctx, n)
		}).
		OnWay(func(wy *model.Way) error {
			ways.Add(1)
			return w.Write(ctx, wy)
		}).
		OnRelation(func(r *model.Relation) error {
			relations.Add(1)
			return w.Write(ctx, r)
		}).
		Parse(ctx)

	if cerr := w.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return stats{}, fmt.Errorf("copy failed: %w", err)
	}

	return stats{nodes: nodes.Load(), ways: ways.Load(), relations: relations.Load()}, nil
}
