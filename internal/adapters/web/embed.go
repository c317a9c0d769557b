// Package web serves the lookup page and a JSON API over HTTP.
// Binds to localhost only. No network exposure, no auth needed.
package web

import "embed"

//go:embed static/index.html
var staticFS embed.FS
