package assets

import _ "embed"

// SeedData is a demo ledger written to the data file on first start
// of the memory backend.
//
//go:embed seed/piggybank.json
var SeedData []byte
