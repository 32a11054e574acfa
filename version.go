package pipedeck

import _ "embed"

// Version is the release of this module, embedded from the VERSION file.
//
//go:embed VERSION
var Version string
