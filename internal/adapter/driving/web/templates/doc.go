// Package templates holds the templ components of the web UI. The
// _templ.go files are generated; regenerate them after editing a .templ file.
package templates

//go:generate go tool templ generate
