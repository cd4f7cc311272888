// assets/embed.go
//
// Files compiled into the binary:
//   - words.txt: default dictionary used when no --words file is configured.
//   - sql/*.sql: schema migrations for the evaluation run history database.

package assets

import (
	"bufio"
	"embed"
	"io/fs"
)

//go:embed words.txt
var FS embed.FS

//go:embed sql/*.sql
var migrations embed.FS

// WordLines returns the raw lines of the embedded dictionary.
// Normalization is left to the lexicon package.
func WordLines() ([]string, error) {
	f, err := FS.Open("words.txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

// Migrations exposes the embedded sql/ directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "sql")
	if err != nil {
		// sql/ is embedded at build time; Sub only fails on an invalid path.
		panic(err)
	}
	return sub
}
