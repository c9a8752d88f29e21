package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/guildtools/rosterd/internal/data/pgxutil"
	domainauth "github.com/guildtools/rosterd/internal/domain/auth"
	"github.com/guildtools/rosterd/internal/ports"
)

// GuildConfigRepo is the Postgres-backed guild configuration store.
// The configuration is a singleton row plus a role_mappings table; reads
// happen on every authorization decision, writes only through setup and
// administration.
type GuildConfigRepo struct {
	DB *sql.DB
}

var _ ports.GuildConfigStore = (*GuildConfigRepo)(nil)

// NewGuildConfigRepo creates a new GuildConfigRepo.
func NewGuildConfigRepo(db *sql.DB) *GuildConfigRepo {
	return &GuildConfigRepo{DB: db}
}

// Read fetches the configuration record and its role mappings.
func (r *GuildConfigRepo) Read(ctx context.Context) (*domainauth.GuildConfig, error) {
	var out domainauth.GuildConfig
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		row := conn.QueryRow(ctx, `
			SELECT owner_id, require_membership, updated_at
			FROM guild_config WHERE id = 1`)
		if scanErr := row.Scan(&out.OwnerID, &out.RequireMembership, &out.UpdatedAt); scanErr != nil {
			if errors.Is(scanErr, pgx.ErrNoRows) {
				return ports.ErrConfigNotFound
			}
			return fmt.Errorf("read guild config: %w", scanErr)
		}

		rows, queryErr := conn.Query(ctx, `
			SELECT discord_role_id, discord_role_name, permission_level
			FROM role_mappings ORDER BY discord_role_id`)
		if queryErr != nil {
			return fmt.Errorf("read role mappings: %w", queryErr)
		}
		defer rows.Close()

		for rows.Next() {
			var m domainauth.RoleMapping
			var level string
			if scanErr := rows.Scan(&m.DiscordRoleID, &m.DiscordRoleName, &level); scanErr != nil {
				return fmt.Errorf("scan role mapping: %w", scanErr)
			}
			parsed, parseErr := domainauth.ParsePermissionLevel(level)
			if parseErr != nil {
				return fmt.Errorf("role mapping %s: %w", m.DiscordRoleID, parseErr)
			}
			m.Level = parsed
			out.RoleMappings = append(out.RoleMappings, m)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Save writes the whole configuration record, replacing role mappings.
func (r *GuildConfigRepo) Save(ctx context.Context, cfg domainauth.GuildConfig) error {
	if cfg.OwnerID == "" {
		return errors.New("owner ID cannot be empty")
	}

	return mapWriteErr(pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO guild_config (id, owner_id, require_membership, updated_at)
			VALUES (1, $1, $2, $3)
			ON CONFLICT (id) DO UPDATE
			SET owner_id = EXCLUDED.owner_id,
			    require_membership = EXCLUDED.require_membership,
			    updated_at = EXCLUDED.updated_at`,
			cfg.OwnerID, cfg.RequireMembership, time.Now().UTC(),
		); err != nil {
			return fmt.Errorf("upsert guild config: %w", err)
		}
		return replaceMappings(ctx, tx, cfg.RoleMappings)
	}))
}

// ReplaceRoleMappings replaces the full mapping list. The configuration
// record must already exist.
func (r *GuildConfigRepo) ReplaceRoleMappings(ctx context.Context, mappings []domainauth.RoleMapping) error {
	return mapWriteErr(pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM guild_config WHERE id = 1)`,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check guild config: %w", err)
		}
		if !exists {
			return ports.ErrConfigNotFound
		}

		if err := replaceMappings(ctx, tx, mappings); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE guild_config SET updated_at = $1 WHERE id = 1`, time.Now().UTC(),
		); err != nil {
			return fmt.Errorf("touch guild config: %w", err)
		}
		return nil
	}))
}

func replaceMappings(ctx context.Context, tx pgx.Tx, mappings []domainauth.RoleMapping) error {
	if _, err := tx.Exec(ctx, `DELETE FROM role_mappings`); err != nil {
		return fmt.Errorf("clear role mappings: %w", err)
	}

	for _, m := range mappings {
		if !m.Level.Valid() {
			return fmt.Errorf("role mapping %s: invalid permission level %d", m.DiscordRoleID, int(m.Level))
		}
		// Upsert so a duplicate role id within one submission is
		// last-write-wins rather than a unique violation.
		if _, err := tx.Exec(ctx, `
			INSERT INTO role_mappings (discord_role_id, discord_role_name, permission_level, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (discord_role_id) DO UPDATE
			SET discord_role_name = EXCLUDED.discord_role_name,
			    permission_level = EXCLUDED.permission_level,
			    updated_at = EXCLUDED.updated_at`,
			m.DiscordRoleID, m.DiscordRoleName, m.Level.String(), time.Now().UTC(),
		); err != nil {
			return fmt.Errorf("insert role mapping %s: %w", m.DiscordRoleID, err)
		}
	}
	return nil
}
