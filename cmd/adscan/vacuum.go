package main

import (
	"fmt"

	"github.com/fwojciec/adscan"
)

// Run executes the vacuum command.
func (c *VacuumCmd) Run(deps *Dependencies) error {
	if err := deps.DB.Vacuum(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adscan.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "Database compacted.")
	return nil
}
