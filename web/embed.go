// Package web embeds the single-page interface served at the root path.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var content embed.FS

// StaticFS is the embedded static tree, rooted at the directory itself.
var StaticFS fs.FS

func init() {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		panic(err)
	}
	StaticFS = sub
}
