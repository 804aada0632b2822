// Package web holds embedded assets.
package web

import "embed"

// Templates contains the HTML templates used for PDF rendering.
//
//go:embed templates
var Templates embed.FS
