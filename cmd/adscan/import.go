package main

import (
	"fmt"

	"github.com/fwojciec/adscan"
	"github.com/fwojciec/adscan/fs"
)

// Run executes the import command.
func (c *ImportCmd) Run(deps *Dependencies) error {
	records, err := fs.ScanResults(c.Dir)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adscan.ErrorMessage(err))
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(deps.Stdout, "No result records found.")
		return nil
	}

	imported, err := deps.Tracker.ImportRecords(deps.Ctx, records)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adscan.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Imported %d of %d records (%d already tracked).\n",
		imported, len(records), len(records)-imported)
	return nil
}
