package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/docfed/docfed"
	"github.com/docfed/docfed/ingest"
	"github.com/docfed/docfed/sqlite"
	"github.com/docfed/docfed/yaml"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Config     *yaml.Config
	Logger     *slog.Logger
	Cache      *sqlite.CacheService
	Aggregator docfed.Aggregator
	Scheduler  *ingest.Scheduler
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"c" help:"Configuration file path"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Serve  ServeCmd  `cmd:"" help:"Run the federated search gateway"`
	Search SearchCmd `cmd:"" help:"Run a one-shot federated search"`
	Purge  PurgeCmd  `cmd:"" help:"Remove expired entries from the cache"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:":8080" help:"Gateway listen address"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query     []string `arg:"" help:"Query text"`
	Tech      string   `short:"t" help:"Technology hint"`
	Providers []string `short:"p" help:"Restrict to the named providers (repeatable)"`
	Limit     int      `short:"n" help:"Maximum number of results"`
	JSON      bool     `help:"Print the full result set as JSON"`
}

// PurgeCmd is the "purge" subcommand.
type PurgeCmd struct{}
