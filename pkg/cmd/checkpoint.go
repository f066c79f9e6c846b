// Package cmd provides shared constructors the binaries use to assemble
// their checkpoint store, event bus, and generation backend from flags.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/testsmith-ai/testsmith/pkg/checkpoint"
	"github.com/testsmith-ai/testsmith/pkg/checkpoint/file"
	"github.com/testsmith-ai/testsmith/pkg/checkpoint/memory"
	"github.com/testsmith-ai/testsmith/pkg/checkpoint/postgresql"
	"github.com/testsmith-ai/testsmith/pkg/checkpoint/redis"
)

// NewCheckpointStore selects the store backend from the URL scheme:
// memory://, file://<dir>, redis://..., postgres://... A URL without a scheme
// is treated as a file path.
func NewCheckpointStore(ctx context.Context, logger *slog.Logger, databaseURL string) (checkpoint.Store, error) {
	switch parseStoreProvider(databaseURL) {
	case "memory":
		return memory.NewStore(), nil
	case "redis":
		return redis.NewStore(ctx, databaseURL)
	case "postgres", "postgresql":
		return postgresql.NewStore(ctx, logger, databaseURL)
	case "file":
		return file.NewStore(databaseURL), nil
	}

	return nil, fmt.Errorf("unsupported checkpoint store url: %s", databaseURL)
}

func parseStoreProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	switch scheme {
	case "memory", "redis", "postgres", "postgresql", "file":
		return scheme
	}

	return ""
}
