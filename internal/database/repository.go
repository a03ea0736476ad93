package database

import (
	"github.com/robalyx/fuzzy/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	infraction  *models.InfractionModel
	pardon      *models.PardonModel
	publication *models.PublicationModel
	lock        *models.LockModel
	threadLock  *models.ThreadLockModel
	guild       *models.GuildSettingsModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		infraction:  models.NewInfraction(db, logger),
		pardon:      models.NewPardon(db, logger),
		publication: models.NewPublication(db, logger),
		lock:        models.NewLock(db, logger),
		threadLock:  models.NewThreadLock(db, logger),
		guild:       models.NewGuildSettings(db, logger),
	}
}

// Infraction returns the infraction model repository.
func (r *Repository) Infraction() *models.InfractionModel {
	return r.infraction
}

// Pardon returns the pardon model repository.
func (r *Repository) Pardon() *models.PardonModel {
	return r.pardon
}

// Publication returns the published message model repository.
func (r *Repository) Publication() *models.PublicationModel {
	return r.publication
}

// Lock returns the channel lock model repository.
func (r *Repository) Lock() *models.LockModel {
	return r.lock
}

// ThreadLock returns the thread lock model repository.
func (r *Repository) ThreadLock() *models.ThreadLockModel {
	return r.threadLock
}

// GuildSettings returns the guild settings model repository.
func (r *Repository) GuildSettings() *models.GuildSettingsModel {
	return r.guild
}
