package commands

import (
	"errors"

	"github.com/robalyx/fuzzy/internal/database"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

var (
	ErrNameRequired  = errors.New("NAME argument required")
	ErrGuildRequired = errors.New("GUILD_ID argument required")
	ErrInvalidID     = errors.New("invalid snowflake id")
)

// CLIDependencies holds the common dependencies needed by CLI commands.
type CLIDependencies struct {
	DB       database.Client
	Migrator *migrate.Migrator
	Logger   *zap.Logger
}
