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

// Package packers compresses blob payloads, one Packer per Blob data kind.
package packers

import (
	"bytes"
	"io"
)

// base buffers the packed output and counts the uncompressed bytes written,
// which compressed blobs record as raw_size.
type base struct {
	buf bytes.Buffer
	w   io.WriteCloser
	n   int
}

func (b *base) Write(p []byte) (int, error) {
	n, err := b.w.Write(p)
	b.n += n

	return n, err
}

func (b *base) Close() error {
	return b.w.Close()
}

func (b *base) rawSize() *int32 {
	n := int32(b.n)
	return &n
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
