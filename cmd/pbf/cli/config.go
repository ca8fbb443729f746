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
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	pbf "m4o.io/parallelpbf"
)

// Settings are the knobs of the pbf command. Each one can come from the
// YAML config file or from the flag of the same name, the flag winning.
type Settings struct {
	Verbose        bool   `yaml:"verbose,omitempty"`
	LogFile        string `yaml:"log-file,omitempty"`
	Parallelism    uint16 `yaml:"cpu,omitempty"`
	Mmap           bool   `yaml:"mmap,omitempty"`
	Compression    string `yaml:"compression,omitempty"`
	BlockSizeLimit int    `yaml:"block-size,omitempty"`
	WritingProgram string `yaml:"writing-program,omitempty"`
}

func DefaultConfig() *Settings {
	return &Settings{
		Parallelism:    pbf.DefaultNCpu(),
		Compression:    pbf.DefaultBlobCompression.String(),
		BlockSizeLimit: pbf.DefaultBlockSizeLimit,
		WritingProgram: pbf.DefaultWritingProgram,
	}
}

// LoadConfig reads settings from a YAML file. Keys missing from the file
// are left at their zero value.
func LoadConfig(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unable to parse config %s: %w", path, err)
	}

	return &s, nil
}

// merge copies the values set in o into s, except those whose flag was
// given explicitly.
func (s *Settings) merge(o *Settings, flags *pflag.FlagSet) {
	set := func(name string, apply func()) {
		if f := flags.Lookup(name); f == nil || !f.Changed {
			apply()
		}
	}

	if o.Verbose {
		set("verbose", func() { s.Verbose = true })
	}

	if o.LogFile != "" {
		set("log-file", func() { s.LogFile = o.LogFile })
	}

	if o.Parallelism != 0 {
		set("cpu", func() { s.Parallelism = o.Parallelism })
	}

	if o.Mmap {
		set("mmap", func() { s.Mmap = true })
	}

	if o.Compression != "" {
		set("compression", func() { s.Compression = o.Compression })
	}

	if o.BlockSizeLimit != 0 {
		set("block-size", func() { s.BlockSizeLimit = o.BlockSizeLimit })
	}

	if o.WritingProgram != "" {
		set("writing-program", func() { s.WritingProgram = o.WritingProgram })
	}
}
