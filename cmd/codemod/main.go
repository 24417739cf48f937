package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

func main() {
	ctx := context.Background()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("fatal error")
		os.Exit(1)
	}
}
