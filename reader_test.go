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

package pbf

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/parallelpbf/internal/decoder"
	"m4o.io/parallelpbf/internal/encoder"
	"m4o.io/parallelpbf/internal/pb"
	"m4o.io/parallelpbf/model"
)

func TestReaderRoundTrip(t *testing.T) {
	entities := sampleEntities(5000, 800, 120)

	for _, c := range []BlobCompression{RAW, ZLIB, LZ4, ZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			file := writeFile(t, entities, WithCompression(c), WithBlockSizeLimit(16*1024))

			var (
				col       collector
				completed atomic.Bool
			)

			r := col.register(NewReader(bytes.NewReader(file), WithParallelism(4))).
				OnComplete(func() { completed.Store(true) })

			require.NoError(t, r.Parse(context.Background()))
			assert.True(t, completed.Load())

			assertSameEntities(t, entities, col.sorted())
		})
	}
}

func TestReaderCompletesAfterEveryCallback(t *testing.T) {
	entities := sampleEntities(3000, 0, 0)
	file := writeFile(t, entities, WithBlockSizeLimit(8*1024))

	var (
		delivered atomic.Int64
		atFinish  int64
		calls     int
	)

	r := NewReader(bytes.NewReader(file), WithParallelism(3)).
		OnNode(func(*model.Node) error {
			time.Sleep(10 * time.Microsecond)
			delivered.Add(1)

			return nil
		}).
		OnComplete(func() {
			calls++
			atFinish = delivered.Load()
		})

	require.NoError(t, r.Parse(context.Background()))
	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(len(entities)), atFinish)
}

func TestReaderBoundsBlobsInFlight(t *testing.T) {
	const parallelism = 2

	file := writeFile(t, sampleEntities(4000, 0, 0), WithBlockSizeLimit(4*1024))

	r := NewReader(bytes.NewReader(file), WithParallelism(parallelism)).
		OnNode(func(*model.Node) error {
			time.Sleep(5 * time.Microsecond)
			return nil
		})

	require.NoError(t, r.Parse(context.Background()))

	assert.LessOrEqual(t, r.peakInFlight.Load(), int64(parallelism))
	assert.GreaterOrEqual(t, r.peakInFlight.Load(), int64(1))
	assert.Equal(t, int64(0), r.inFlight.Load())
}

func TestReaderCallbackErrorFailsParse(t *testing.T) {
	errStop := errors.New("stop")

	file := writeFile(t, sampleEntities(2000, 10, 0), WithBlockSizeLimit(4*1024))

	var completed bool

	r := NewReader(bytes.NewReader(file), WithParallelism(4)).
		OnNode(func(n *model.Node) error {
			if n.ID == 1500 {
				return errStop
			}

			return nil
		}).
		OnComplete(func() { completed = true })

	err := r.Parse(context.Background())
	require.ErrorIs(t, err, errStop)
	assert.False(t, completed)
	assert.Equal(t, int64(0), r.inFlight.Load())
}

func TestReaderSkipsUnregisteredTypes(t *testing.T) {
	file := writeFile(t, sampleEntities(100, 20, 5))

	var ways int

	r := NewReader(bytes.NewReader(file), WithParallelism(1)).
		OnWay(func(*model.Way) error {
			ways++
			return nil
		})

	require.NoError(t, r.Parse(context.Background()))
	assert.Equal(t, 20, ways)
}

func TestReaderHeaderCallbacks(t *testing.T) {
	bbox := model.BoundingBox{Left: -0.511482, Right: 0.335437, Top: 51.69344, Bottom: 51.28554}

	file := writeFile(t, nil,
		WithBoundingBox(bbox),
		WithWritingProgram("test-writer"),
		WithSource("survey"),
		WithOptionalFeatures("Sort.Type_then_ID"))

	var (
		hdr model.Header
		got model.BoundingBox
	)

	r := NewReader(bytes.NewReader(file)).
		OnHeader(func(h model.Header) error {
			hdr = h
			return nil
		}).
		OnBoundingBox(func(b model.BoundingBox) error {
			got = b
			return nil
		})

	require.NoError(t, r.Parse(context.Background()))

	assert.Equal(t, []string{"OsmSchema-V0.6", "DenseNodes"}, hdr.RequiredFeatures)
	assert.Equal(t, []string{"Sort.Type_then_ID"}, hdr.OptionalFeatures)
	assert.Equal(t, "test-writer", hdr.WritingProgram)
	assert.Equal(t, "survey", hdr.Source)
	assert.True(t, bbox.EqualWithin(&got, model.E9))
}

func TestReaderRejectsUnsupportedFeature(t *testing.T) {
	var buf bytes.Buffer

	hdr := model.Header{RequiredFeatures: []string{"OsmSchema-V0.6", "unsupported_feature"}}
	require.NoError(t, encoder.SaveHeader(encoder.NewBlobWriter(&buf, encoder.RAW), hdr))

	file := buf.Bytes()

	var completed bool

	r := NewReader(bytes.NewReader(file)).OnComplete(func() { completed = true })

	assert.ErrorIs(t, r.Parse(context.Background()), decoder.ErrUnsupportedFeature)
	assert.False(t, completed)

	_, err := ReadHeader(bytes.NewReader(file))
	assert.ErrorIs(t, err, decoder.ErrUnsupportedFeature)
}

func TestReaderRejectsLzmaPayloads(t *testing.T) {
	file := frame(t, decoder.OSMDataType, &pb.Blob{Data: &pb.Blob_LzmaData{LzmaData: []byte{0x5d, 0, 0}}})

	r := NewReader(bytes.NewReader(file)).OnNode(func(*model.Node) error { return nil })

	assert.ErrorIs(t, r.Parse(context.Background()), decoder.ErrUnsupportedCompression)
}

func TestReaderStopsAtMalformedFrame(t *testing.T) {
	entities := sampleEntities(300, 0, 0)
	file := writeFile(t, entities)

	// a header length over the limit reads like the end of the stream
	file = append(file, 0xff, 0xff, 0xff, 0xff, 1, 2, 3)

	var (
		col       collector
		completed bool
	)

	r := col.register(NewReader(bytes.NewReader(file))).OnComplete(func() { completed = true })

	require.NoError(t, r.Parse(context.Background()))
	assert.True(t, completed)
	assert.Len(t, col.sorted(), len(entities))
}

func TestReaderParseInProgress(t *testing.T) {
	file := writeFile(t, sampleEntities(10, 0, 0))

	entered := make(chan struct{})
	release := make(chan struct{})

	r := NewReader(bytes.NewReader(file), WithParallelism(1)).
		OnNode(func(n *model.Node) error {
			if n.ID == 1 {
				close(entered)
				<-release
			}

			return nil
		})

	done := make(chan error)

	go func() { done <- r.Parse(context.Background()) }()

	<-entered
	assert.ErrorIs(t, r.Parse(context.Background()), ErrParseInProgress)
	close(release)

	require.NoError(t, <-done)
}

func TestReaderCancelledContext(t *testing.T) {
	file := writeFile(t, sampleEntities(10, 0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var completed bool

	r := NewReader(bytes.NewReader(file)).OnComplete(func() { completed = true })

	assert.ErrorIs(t, r.Parse(ctx), context.Canceled)
	assert.False(t, completed)
}

func TestReadHeader(t *testing.T) {
	bbox := model.BoundingBox{Left: 8.48, Right: 9.0, Top: 53.23, Bottom: 53.01}
	file := writeFile(t, sampleEntities(10, 0, 0), WithBoundingBox(bbox), WithRequiredFeatures("HistoricalInformation"))

	hdr, err := ReadHeader(bytes.NewReader(file))
	require.NoError(t, err)

	require.NotNil(t, hdr.BoundingBox)
	assert.True(t, bbox.EqualWithin(hdr.BoundingBox, model.E9))
	assert.Equal(t, []string{"OsmSchema-V0.6", "DenseNodes", "HistoricalInformation"}, hdr.RequiredFeatures)
	assert.Equal(t, DefaultWritingProgram, hdr.WritingProgram)

	_, err = ReadHeader(bytes.NewReader(nil))
	assert.Error(t, err)
}
