/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"animview/internal/config"
	"animview/internal/crash"
	applog "animview/internal/log"
	"animview/internal/version"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
	}
	applog.Init(cfg.Logging.LogOptions())
	defer crash.Recover(&crash.Target{})

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree around an already loaded config.
func newRootCmd(cfg config.AppConfig) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "animview",
		Short:        "Render and inspect animation project views",
		Long:         "animview renders the project view of a 2D vector animation scene to PNG, SVG or PDF, caches frame previews and hosts the desktop editor view.",
		Version:      version.String(),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				opts := cfg.Logging.LogOptions()
				opts.Level = "debug"
				applog.Init(opts)
			}
			applog.WithComponent("cli").Debug("command start", slog.String("cmd", cmd.CommandPath()), slog.Int("args", len(args)))
		},
	}
	root.SetVersionTemplate("animview {{.Version}}\n")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRenderCmd(cfg))
	root.AddCommand(newPrerenderCmd(cfg))
	root.AddCommand(newInspectCmd(cfg))
	root.AddCommand(newConfigCmd(cfg))
	root.AddCommand(newVersionCmd())
	root.AddCommand(newUICmd(cfg))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "animview", version.String())
			return err
		},
	}
}
