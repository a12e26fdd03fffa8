package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/docfed/docfed"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	// Run the ingestion workers for the lifetime of the query so
	// qualifying results are written through before exit.
	ctx, cancel := context.WithCancel(deps.Ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = deps.Scheduler.Run(ctx)
	}()

	set, err := deps.Aggregator.Search(deps.Ctx, docfed.SearchQuery{
		Text:           strings.Join(c.Query, " "),
		TechnologyHint: c.Tech,
		ProviderIDs:    c.Providers,
		Limit:          c.Limit,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docfed.ErrorMessage(err))
		cancel()
		<-done
		return err
	}

	// Give pending writes a moment to drain, then stop the workers.
	drainDeadline := time.Now().Add(2 * time.Second)
	for deps.Scheduler.Stats().Pending > 0 && time.Now().Before(drainDeadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(set)
	}

	if len(set.Results) == 0 {
		fmt.Fprintln(deps.Stdout, "No results.")
	}
	for i, r := range set.Results {
		fmt.Fprintf(deps.Stdout, "%2d. [%.2f] %s\n    %s\n", i+1, r.Confidence, r.Title, r.Source)
	}

	for _, ps := range set.Providers {
		if ps.State == docfed.ProviderOK {
			continue
		}
		fmt.Fprintf(deps.Stderr, "provider %s: %s", ps.ProviderID, ps.State)
		if ps.Err != "" {
			fmt.Fprintf(deps.Stderr, " (%s)", ps.Err)
		}
		fmt.Fprintln(deps.Stderr)
	}

	return nil
}
