// Package static embeds the browser editor.
package static

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:generate sh -c "cp \"$(go env GOROOT)/lib/wasm/wasm_exec.js\" dist/assets/wasm_exec.js"
//go:generate env GOOS=js GOARCH=wasm go build -o dist/adproof.wasm ../../../clients/wasm

//go:embed all:dist
var distFS embed.FS

// GetFileSystem returns an http.FileSystem for the embedded dist directory.
func GetFileSystem() http.FileSystem {
	fsys, err := fs.Sub(distFS, "dist")
	if err != nil {
		panic(err)
	}
	return http.FS(fsys)
}
