package assets

import (
	"embed"
	"io/fs"
)

//go:embed datasets/*.csv sql/*.sql
var FS embed.FS

// Datasets returns the embedded fallback datasets, rooted at datasets/.
func Datasets() fs.FS {
	sub, err := fs.Sub(FS, "datasets")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrations returns the embedded SQL migrations, rooted at sql/.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}
