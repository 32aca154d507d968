// Copyright 2025 The Parkpilot Authors
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

// Command parkpilot runs the parking orchestration system.
//
// Usage:
//
//	parkpilot serve --config parkpilot.yaml
//	parkpilot find "Toronto City Hall" --profile commuter_saver --max-price 5
//	parkpilot navigate "Toronto City Hall"
//	parkpilot profiles
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/parkpilot/parkpilot/pkg/agent"
	"github.com/parkpilot/parkpilot/pkg/config"
	"github.com/parkpilot/parkpilot/pkg/constraint"
	"github.com/parkpilot/parkpilot/pkg/runtime"
	"github.com/parkpilot/parkpilot/pkg/server"
)

// CLI defines the command-line interface.
type CLI struct {
	Version  VersionCmd  `cmd:"" help:"Show version information."`
	Serve    ServeCmd    `cmd:"" help:"Start the HTTP server."`
	Find     FindCmd     `cmd:"" help:"Find parking near a destination."`
	Navigate NavigateCmd `cmd:"" help:"Get a route to a destination."`
	Profiles ProfilesCmd `cmd:"" help:"List the selectable user profiles."`
	Validate ValidateCmd `cmd:"" help:"Validate a configuration file."`

	Config    string `short:"c" help:"Path to config file." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (simple, verbose, json)." default:"simple"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("parkpilot version %s\n", version)
	return nil
}

// ServeCmd starts the HTTP server.
type ServeCmd struct {
	Port  int  `help:"Port to listen on (overrides config)."`
	Watch bool `help:"Watch the config file for changes."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()
	}()

	cfg, err := config.LoadOrDefault(cli.Config)
	if err != nil {
		return err
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	if c.Watch && cli.Config != "" {
		stop, err := config.Watch(cli.Config, slog.Default(), func(newCfg *config.Config) {
			// Agents are wired at assembly; a changed topology needs a
			// restart. Validated changes are surfaced so operators know.
			slog.Warn("Configuration changed on disk; restart to apply",
				"path", cli.Config)
		})
		if err != nil {
			return err
		}
		defer stop()
	}

	sys, err := runtime.New(cfg, slog.Default(), runtime.Options{})
	if err != nil {
		return err
	}
	defer sys.Close()

	srv := server.NewHTTPServer(sys, slog.Default())

	fmt.Printf("\nparkpilot server ready\n")
	fmt.Printf("   Search:    POST http://%s/v1/parking/search\n", cfg.Server.Address())
	fmt.Printf("   Navigate:  POST http://%s/v1/parking/navigate\n", cfg.Server.Address())
	fmt.Printf("   Profiles:  GET  http://%s/v1/profiles\n", cfg.Server.Address())
	fmt.Printf("   Feedback:  POST http://%s/v1/feedback\n", cfg.Server.Address())
	fmt.Printf("   Health:    GET  http://%s/healthz\n", cfg.Server.Address())
	fmt.Printf("   Metrics:   GET  http://%s/metrics\n", cfg.Server.Address())
	fmt.Println("\nPress Ctrl+C to stop")

	return srv.Start(ctx)
}

// FindCmd runs one parking search from the terminal.
type FindCmd struct {
	Destination string `arg:"" help:"Where you are heading."`

	Profile       string   `help:"User profile (see 'parkpilot profiles')."`
	MaxPrice      *float64 `name:"max-price" help:"Hard price ceiling per half hour."`
	MaxWalk       *float64 `name:"max-walk" help:"Hard walking distance ceiling in meters."`
	EVCharging    bool     `name:"ev" help:"Require an EV charging station."`
	Accessibility bool     `name:"accessible" help:"Require accessibility features."`
}

func (c *FindCmd) Run(cli *CLI) error {
	sys, err := assembleSystem(cli)
	if err != nil {
		return err
	}
	defer sys.Close()

	constraints := constraint.Set{
		MaxPrice:           c.MaxPrice,
		MaxWalkingDistance: c.MaxWalk,
	}
	if c.EVCharging {
		constraints.EVCharging = constraint.Required
	}
	if c.Accessibility {
		constraints.Accessibility = constraint.Required
	}

	result, err := sys.FindParking(context.Background(), c.Destination, c.Profile,
		constraint.Set{}, constraints)
	if err != nil {
		return err
	}
	return printResult(result)
}

// NavigateCmd requests a route from the terminal.
type NavigateCmd struct {
	Destination string `arg:"" optional:"" help:"Where to navigate; empty reuses the last search."`
}

func (c *NavigateCmd) Run(cli *CLI) error {
	sys, err := assembleSystem(cli)
	if err != nil {
		return err
	}
	defer sys.Close()

	result, err := sys.Navigate(context.Background(), c.Destination)
	if err != nil {
		return err
	}
	return printResult(result)
}

// ProfilesCmd lists the selectable user profiles.
type ProfilesCmd struct{}

func (c *ProfilesCmd) Run(cli *CLI) error {
	sys, err := assembleSystem(cli)
	if err != nil {
		return err
	}
	defer sys.Close()

	fmt.Println("Available profiles:")
	for _, p := range sys.Profiles() {
		fmt.Printf("  - %s: %s\n", p.Key, p.Description)
	}
	return nil
}

// ValidateCmd checks a configuration file.
type ValidateCmd struct{}

func (c *ValidateCmd) Run(cli *CLI) error {
	if cli.Config == "" {
		return fmt.Errorf("--config is required for validate")
	}
	if _, err := config.Load(cli.Config); err != nil {
		return err
	}
	fmt.Printf("%s is valid\n", cli.Config)
	return nil
}

func assembleSystem(cli *CLI) (*runtime.System, error) {
	cfg, err := config.LoadOrDefault(cli.Config)
	if err != nil {
		return nil, err
	}
	return runtime.New(cfg, slog.Default(), runtime.Options{SkipFeedback: true})
}

func printResult(result *agent.Result) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	if result.Failed() {
		return fmt.Errorf("task failed: %s", result.Error)
	}
	return nil
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("parkpilot"),
		kong.Description("parkpilot - agent-orchestrated parking search and guidance"),
		kong.UsageOnError(),
	)

	cleanup, err := initLoggerFromCLI(cli.LogLevel, cli.LogFile, cli.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	err = ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
