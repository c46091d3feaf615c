// Package templates holds the server-rendered pages.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var FS embed.FS

// Parse parses every page. Pages are addressed by file name, e.g. "login.html".
func Parse() (*template.Template, error) {
	return template.New("").ParseFS(FS, "*.html")
}

// Must is like Parse but panics on error. The pages are compiled into the
// binary, so a failure here is a programming error.
func Must() *template.Template {
	return template.Must(Parse())
}
