// Package assets embeds the default word lists and the SQL migrations so the
// server binary runs without any files next to it.
package assets

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed words/*.json migrations/*.sql
var FS embed.FS

// WordList returns the raw JSON word list for a language ("en", "ar").
func WordList(lang string) ([]byte, error) {
	return FS.ReadFile("words/words-" + lang + ".json")
}

// Migrations returns the embedded migration file names in apply order.
func Migrations() ([]string, error) {
	entries, err := fs.ReadDir(FS, "migrations")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			continue
		}
		out = append(out, "migrations/"+e.Name())
	}
	sort.Strings(out)
	return out, nil
}
