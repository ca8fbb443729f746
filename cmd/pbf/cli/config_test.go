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
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pbf "m4o.io/parallelpbf"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pbf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
verbose: true
cpu: 3
mmap: true
compression: zstd
block-size: 1048576
writing-program: osm-tools
`)

	s, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, &Settings{
		Verbose:        true,
		Parallelism:    3,
		Mmap:           true,
		Compression:    "zstd",
		BlockSizeLimit: 1 << 20,
		WritingProgram: "osm-tools",
	}, s)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "cpu: [1, 2"))
	assert.Error(t, err)
}

func TestMergeConfig(t *testing.T) {
	s := DefaultConfig()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Uint16Var(&s.Parallelism, "cpu", s.Parallelism, "")
	flags.StringVar(&s.LogFile, "log-file", s.LogFile, "")
	require.NoError(t, flags.Parse([]string{"--cpu", "5"}))

	s.merge(&Settings{Parallelism: 2, LogFile: "pbf.log", Compression: "LZ4"}, flags)

	assert.Equal(t, uint16(5), s.Parallelism, "explicit flag wins")
	assert.Equal(t, "pbf.log", s.LogFile)
	assert.Equal(t, "LZ4", s.Compression)
	assert.Equal(t, pbf.DefaultBlockSizeLimit, s.BlockSizeLimit, "unset keys keep defaults")
	assert.Equal(t, pbf.DefaultWritingProgram, s.WritingProgram)
}
