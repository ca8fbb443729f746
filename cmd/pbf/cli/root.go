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

// Package cli holds the root command and the helpers shared by the pbf
// subcommands.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	cfg        = DefaultConfig()

	logger *zap.Logger
)

// RootCmd is the pbf command; subcommands add themselves to it.
var RootCmd = &cobra.Command{
	Use:           "pbf",
	Short:         "Inspect and rewrite OpenStreetMap PBF files",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if configFile != "" {
			loaded, err := LoadConfig(configFile)
			if err != nil {
				return err
			}

			cfg.merge(loaded, cmd.Flags())
		}

		logger = NewLogger(cfg.Verbose, cfg.LogFile)
		slog.SetDefault(Slog(logger))

		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the command line and logs the error that ended it, if any.
func Execute() error {
	err := RootCmd.Execute()
	if err != nil {
		slog.Error("pbf failed", "error", err)
	}

	return err
}

// Config returns the settings shared by every subcommand: flags layered
// over the config file over the defaults.
func Config() *Settings {
	return cfg
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "YAML file with default settings")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "log at debug level")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "also log, as JSON, to this rotated file")
	flags.Uint16VarP(&cfg.Parallelism, "cpu", "c", cfg.Parallelism, "number of blobs to decode at once")
	flags.BoolVar(&cfg.Mmap, "mmap", cfg.Mmap, "memory map input files instead of reading them")
}
