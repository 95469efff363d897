package web

import "embed"

// StaticFS holds the embedded static assets (map stylesheet and hover script).
//
//go:embed static/*
var StaticFS embed.FS
