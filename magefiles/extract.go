//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Extract runs batch extraction over responses/ into store/extracted/.
func Extract() error {
	mg.Deps(Init, Build)
	return sh.RunV("bin/sciextract", "batch")
}

// Index ingests extracted records into the SQLite response store.
func Index() error {
	mg.Deps(Extract)
	return sh.RunV("bin/sciextract", "store", "ingest")
}
