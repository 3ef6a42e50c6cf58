// Package web holds the HTML templates and static assets, embedded into the
// binary so the server runs from any working directory.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var templates embed.FS

//go:embed static
var static embed.FS

// Templates returns the template files, rooted at the templates directory.
func Templates() fs.FS {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		// fs.Sub only fails for an invalid path, and the path is a constant.
		panic(err)
	}
	return sub
}

// Static returns the static assets, rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
