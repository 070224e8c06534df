// Unify merges per-language translation files into the unified structure
// consumed by the phrasebook daemon.
//
// Usage:
//
//	unify --dir translations --out translations/unified_translations.json
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/nadzzz/phrasebook/internal/unify"
)

func main() {
	dir := flag.String("dir", "translations", "directory holding per-language <language>.json files")
	out := flag.String("out", "translations/unified_translations.json", "output path for the unified file")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	stats, err := unify.Run(unify.Options{Dir: *dir, Out: *out})
	if err != nil {
		slog.Error("merge failed", "error", err)
		os.Exit(1)
	}

	slog.Info("merge complete",
		"out", *out,
		"languages", stats.Languages,
		"categories", stats.Categories,
		"phrases", stats.Phrases)
	for lang, count := range stats.Coverage {
		slog.Info("coverage", "language", lang, "translated", count, "total", stats.Phrases)
	}
}
