// Command manhwa-index builds the recommendation artifacts from a catalog
// JSON file: a list of {"title", "cover_url", "tags", "synopsis"} objects.
package main

import (
	"flag"
	"fmt"
	"os"

	"manhwarec/internal/catalog"
	"manhwarec/internal/domain"
	"manhwarec/internal/logging"
)

func main() {
	var in, out, logLevel string
	flag.StringVar(&in, "in", "", "Catalog JSON file (.json or .json.gz)")
	flag.StringVar(&out, "out", "data", "Directory to write the artifacts into")
	flag.StringVar(&logLevel, "log-level", "info", "Log level")
	flag.Parse()
	if in == "" {
		fmt.Println("Usage: manhwa-index -in catalog.json [-out data]")
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: logLevel, Format: "console"})
	log := logging.With().Str("in", in).Str("out", out).Logger()

	var entries []domain.Manhwa
	if err := catalog.ReadJSON(in, &entries); err != nil {
		log.Fatal().Err(err).Msg("read catalog failed")
	}
	cat, err := catalog.Build(entries)
	if err != nil {
		log.Fatal().Err(err).Msg("build failed")
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		log.Fatal().Err(err).Msg("create output dir failed")
	}
	if err := cat.Save(out, catalog.DefaultFiles); err != nil {
		log.Fatal().Err(err).Msg("save failed")
	}
	log.Info().
		Int("titles", cat.Len()).
		Int("tag_dimension", cat.Vectorizer().Dimension()).
		Msg("artifacts written")
}
