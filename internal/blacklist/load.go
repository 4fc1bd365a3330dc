// Package blacklist assembles the process-wide common-password set at startup.
package blacklist

import (
	"bytes"
	"context"
	"os"

	"github.com/5w1tchy/passmeter/internal/security/password"
	sqlblacklist "github.com/5w1tchy/passmeter/internal/store/blacklist"
	"github.com/5w1tchy/passmeter/internal/store/dbx"
	"github.com/5w1tchy/passmeter/internal/store/shared"
	"github.com/rs/zerolog"
)

// ObjectReader fetches an object body (satisfied by *s3.Bucket).
type ObjectReader interface {
	ReadObject(ctx context.Context, key string) ([]byte, error)
}

// Sources lists the optional extensions to the built-in list. Zero values are skipped.
type Sources struct {
	File  string
	S3    ObjectReader
	S3Key string
	DB    dbx.Queryer
}

// SourcesFromEnv fills the file and S3 key; the caller attaches clients.
func SourcesFromEnv() Sources {
	return Sources{
		File:  os.Getenv("BLACKLIST_FILE"),
		S3Key: os.Getenv("BLACKLIST_S3_KEY"),
	}
}

// Report counts the entries each source contributed before deduplication.
type Report struct {
	Builtin int      `json:"builtin"`
	File    int      `json:"file"`
	S3      int      `json:"s3"`
	DB      int      `json:"db"`
	Total   int      `json:"total"`
	Failed  []string `json:"failed,omitempty"`
}

// Load builds the set. A failing source is logged and skipped; the built-in
// list is always present.
func Load(ctx context.Context, src Sources, log zerolog.Logger) (*password.CommonSet, Report) {
	log = log.With().Str("component", "blacklist").Logger()

	builtin := password.BuiltinCommon()
	entries := append([]string(nil), builtin...)
	rep := Report{Builtin: len(builtin)}

	fail := func(name string, err error) {
		rep.Failed = append(rep.Failed, name)
		log.Warn().Err(err).Str("source", name).Msg("blacklist source skipped")
	}

	if src.File != "" {
		if lines, err := readFile(src.File); err != nil {
			fail("file", err)
		} else {
			rep.File = len(lines)
			entries = append(entries, lines...)
		}
	}

	if src.S3 != nil && src.S3Key != "" {
		if body, err := src.S3.ReadObject(ctx, src.S3Key); err != nil {
			fail("s3", err)
		} else if lines, err := shared.ReadLines(bytes.NewReader(body)); err != nil {
			fail("s3", err)
		} else {
			rep.S3 = len(lines)
			entries = append(entries, lines...)
		}
	}

	if src.DB != nil {
		if rows, err := sqlblacklist.List(ctx, src.DB); err != nil {
			fail("postgres", err)
		} else {
			rep.DB = len(rows)
			entries = append(entries, rows...)
		}
	}

	set := password.NewCommonSet(shared.DedupEntries(entries)...)
	rep.Total = set.Len()
	log.Info().
		Int("builtin", rep.Builtin).Int("file", rep.File).Int("s3", rep.S3).Int("postgres", rep.DB).
		Int("total", rep.Total).Msg("blacklist loaded")
	return set, rep
}

func readFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return shared.ReadLines(f)
}
