// Command critique inspects chapter critiques offline: it parses critique text,
// fingerprints chapter files, prints the parsed-data JSON Schema, and can request a
// critique from a configured provider.
package main

import (
	"os"

	"novel-backend/internal/shared/telemetry"
)

func main() {
	defer telemetry.Sync()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
