package main

import (
	"fmt"

	docfedhttp "github.com/docfed/docfed/http"
	"golang.org/x/sync/errgroup"
)

// Run executes the serve command.
func (c *ServeCmd) Run(deps *Dependencies) error {
	server := docfedhttp.NewServer(c.Addr, deps.Aggregator, deps.Scheduler,
		docfedhttp.WithServerLogger(deps.Logger))
	if err := server.Open(); err != nil {
		return fmt.Errorf("failed to start gateway on %q: %w", c.Addr, err)
	}

	fmt.Fprintf(deps.Stdout, "docfed gateway listening on %s\n", server.Addr())

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.Go(func() error {
		return deps.Scheduler.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		return server.Close()
	})

	if err := g.Wait(); err != nil {
		return err
	}

	stats := deps.Scheduler.Stats()
	fmt.Fprintf(deps.Stdout, "shutdown: %d persisted, %d pending\n", stats.Persisted, stats.Pending)
	return nil
}
