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

package pbf

import (
	"context"
	"io"
	"sync"

	"github.com/destel/rill"

	"m4o.io/parallelpbf/model"
)

// DefaultDecodedChannelLength is the number of decoded entities buffered
// ahead of Decode.
const DefaultDecodedChannelLength = 8000

// Decoder pulls entities out of a PBF stream, one at a time. It runs a
// Reader in the background, so entities of different blobs come out in no
// particular order.
type Decoder struct {
	Header model.Header

	entities chan rill.Try[model.Entity]
	closed   chan struct{}
	cancel   context.CancelFunc
	close    sync.Once
}

// NewDecoder reads the header of r and starts decoding the rest of it in
// the background, configured with options.
func NewDecoder(ctx context.Context, r io.Reader, opts ...Option) (*Decoder, error) {
	hdr, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)

	d := &Decoder{
		Header:   hdr,
		entities: make(chan rill.Try[model.Entity], DefaultDecodedChannelLength),
		closed:   make(chan struct{}),
		cancel:   cancel,
	}

	send := func(e model.Entity) error {
		select {
		case d.entities <- rill.Try[model.Entity]{Value: e}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	rdr := NewReader(r, opts...).
		OnNode(func(n *model.Node) error { return send(n) }).
		OnWay(func(w *model.Way) error { return send(w) }).
		OnRelation(func(r *model.Relation) error { return send(r) })

	go func() {
		defer close(d.entities)

		if err := rdr.Parse(ctx); err != nil {
			select {
			case d.entities <- rill.Try[model.Entity]{Error: err}:
			case <-d.closed:
			}
		}
	}()

	return d, nil
}

// Decode returns the next *model.Node, *model.Way or *model.Relation. The
// end of the stream is reported by io.EOF; any other error ends decoding.
func (d *Decoder) Decode() (model.Entity, error) {
	t, ok := <-d.entities
	if !ok {
		return nil, io.EOF
	}

	return t.Value, t.Error
}

// Entities exposes the decoded stream for use in rill pipelines. It is
// closed at the end of the stream; a failure arrives as its last item.
func (d *Decoder) Entities() <-chan rill.Try[model.Entity] {
	return d.entities
}

// Close cancels background decoding and waits for it to stop.
func (d *Decoder) Close() {
	d.close.Do(func() {
		close(d.closed)
		d.cancel()
	})

	for range d.entities {
		// drain until the background Parse has returned
	}
}
