package web

import "embed"

// Templates embeds the HTML document templates rendered through Gotenberg.
//
//go:embed templates/reports/*.html
var Templates embed.FS
