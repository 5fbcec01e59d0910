package main

import (
	"fmt"

	"github.com/fwojciec/adscan"
)

// Run executes the reset command.
func (c *ResetCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintln(deps.Stderr, "This clears all processed-URL tracking. Re-run with --force to confirm.")
		return adscan.Errorf(adscan.EINVALID, "reset requires --force")
	}

	if err := deps.Tracker.Reset(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adscan.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "Ledger cleared.")
	return nil
}
