package migrations

import (
	"context"
	"fmt"

	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		tables := []struct {
			model       any
			foreignKeys []string
		}{
			{(*types.GuildSettings)(nil), nil},
			{(*types.Infraction)(nil), nil},
			{(*types.Pardon)(nil), []string{
				`("infraction_id") REFERENCES "infractions" ("id") ON DELETE CASCADE`,
			}},
			{(*types.PublishedMessage)(nil), []string{
				`("infraction_id") REFERENCES "infractions" ("id") ON DELETE CASCADE`,
			}},
			{(*types.Lock)(nil), nil},
			{(*types.ThreadLock)(nil), nil},
		}

		for _, table := range tables {
			query := db.NewCreateTable().
				Model(table.model).
				IfNotExists()
			for _, fk := range table.foreignKeys {
				query = query.ForeignKey(fk)
			}

			if _, err := query.Exec(ctx); err != nil {
				return fmt.Errorf("failed to create table %T: %w", table.model, err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.ThreadLock)(nil),
			(*types.Lock)(nil),
			(*types.PublishedMessage)(nil),
			(*types.Pardon)(nil),
			(*types.Infraction)(nil),
			(*types.GuildSettings)(nil),
		}

		for _, model := range models {
			_, err := db.NewDropTable().
				Model(model).
				IfExists().
				Cascade().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to drop table %T: %w", model, err)
			}
		}

		return nil
	})
}
