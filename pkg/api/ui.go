package api

import "embed"

// staticFS holds the search page. It queries /api/search after 250ms of
// input idle time once the query has at least 2 characters.
//
//go:embed static
var staticFS embed.FS
