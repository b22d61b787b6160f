// Package web holds the embedded dashboard templates.
package web

import "embed"

//go:embed templates/*.html
var TemplateFS embed.FS
