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

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// Input is an opened PBF file, or stdin.
type Input struct {
	io.Reader

	Name string
	Size int64 // -1 for stdin

	closers []func() error
}

// OpenInput opens path for reading; "" and "-" mean stdin. Regular files
// are memory mapped when useMmap is set, and report their progress on
// stderr when progress is set.
func OpenInput(path string, useMmap, progress bool) (*Input, error) {
	if path == "" || path == "-" {
		return &Input{Reader: os.Stdin, Name: "stdin", Size: -1}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	in := &Input{Reader: f, Name: path, Size: fi.Size(), closers: []func() error{f.Close}}

	if useMmap && fi.Size() > 0 {
		m, err := mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("unable to memory map %s: %w", path, err)
		}

		slog.Debug("memory mapped input", "file", path, "size", fi.Size())

		in.Reader = bytes.NewReader(m)
		in.closers = append([]func() error{m.Unmap}, in.closers...)
	}

	if progress {
		bar := newProgressBar(in.Reader, in.Size)

		in.Reader = bar
		in.closers = append([]func() error{func() error { bar.finish(); return nil }}, in.closers...)
	}

	return in, nil
}

// Close releases the input: progress bar first, then mapping, then file.
func (in *Input) Close() error {
	var errs []error

	for _, c := range in.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}

	in.closers = nil

	return errors.Join(errs...)
}
