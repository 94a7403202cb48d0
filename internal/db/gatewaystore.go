package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sylverant/psoserv/internal/constants"
)

// GetCharacterBlob returns the stored character blob for guildcard/slot, or
// nil, nil if no restore point exists yet (spec.md §4.4's CREQ). The gateway
// treats the blob as opaque bytes — it never interprets in-game state.
func (d *DB) GetCharacterBlob(ctx context.Context, guildcard uint32, slot int32) ([]byte, error) {
	var data []byte
	err := d.pool.QueryRow(ctx,
		`SELECT data FROM character_blobs WHERE guildcard = $1 AND slot = $2`,
		guildcard, slot,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying character blob (guildcard=%d, slot=%d): %w", guildcard, slot, err)
	}
	return data, nil
}

// PutCharacterBlob stores or replaces the character blob for guildcard/slot.
// data must be exactly constants.CharacterDataSize bytes, the fixed width
// the CREQ wire packet carries.
func (d *DB) PutCharacterBlob(ctx context.Context, guildcard uint32, slot int32, data []byte) error {
	if len(data) != constants.CharacterDataSize {
		return fmt.Errorf("character blob must be %d bytes, got %d", constants.CharacterDataSize, len(data))
	}
	_, err := d.pool.Exec(ctx,
		`INSERT INTO character_blobs (guildcard, slot, data) VALUES ($1, $2, $3)
		 ON CONFLICT (guildcard, slot) DO UPDATE SET data = EXCLUDED.data`,
		guildcard, slot, data,
	)
	if err != nil {
		return fmt.Errorf("storing character blob (guildcard=%d, slot=%d): %w", guildcard, slot, err)
	}
	return nil
}
