package main

import (
	"fmt"

	"github.com/docfed/docfed"
)

// Run executes the purge command.
func (c *PurgeCmd) Run(deps *Dependencies) error {
	purged, err := deps.Cache.PurgeExpired(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docfed.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Purged %d expired entries.\n", purged)
	return nil
}
