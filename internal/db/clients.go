package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sylverant/psoserv/internal/model"
)

// GetDCClient looks up a DC v1/v2 client by its serial number and access
// key pair, plus dc_id for v1 (spec.md §4.3, grounded on dclogin.c's
// handle_login/handle_v2login dreamcast_clients lookup). Returns nil, nil
// if no matching row exists.
func (d *DB) GetDCClient(ctx context.Context, dcID, serial, accessKey string, v1 bool) (*model.DCClient, error) {
	var c model.DCClient
	var where string
	args := []any{serial, accessKey, v1}
	if v1 {
		where = "dc_id = $4 AND serial_number = $1 AND access_key = $2 AND is_v1 = $3"
		args = append(args, dcID)
	} else {
		where = "serial_number = $1 AND access_key = $2 AND is_v1 = $3"
	}
	err := d.pool.QueryRow(ctx,
		`SELECT account_id, dc_id, serial_number, access_key, guildcard, is_v1
		 FROM dreamcast_clients WHERE `+where,
		args...,
	).Scan(&c.AccountID, &c.DCID, &c.SerialNumber, &c.AccessKey, &c.Guildcard, &c.IsV1)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying dreamcast client: %w", err)
	}
	return &c, nil
}

// CreateDCClient registers a new DC v1/v2/PC client with a freshly allocated
// guildcard. No accounts row is required to exist (spec.md §4.3).
func (d *DB) CreateDCClient(ctx context.Context, dcID, serial, accessKey string, v1 bool) (*model.DCClient, error) {
	guildcard, err := d.nextGuildcard(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocating guildcard: %w", err)
	}
	_, err = d.pool.Exec(ctx,
		`INSERT INTO dreamcast_clients (dc_id, serial_number, access_key, guildcard, is_v1)
		 VALUES ($1, $2, $3, $4, $5)`,
		dcID, serial, accessKey, guildcard, v1,
	)
	if err != nil {
		return nil, fmt.Errorf("creating dreamcast client: %w", err)
	}
	return &model.DCClient{DCID: dcID, SerialNumber: serial, AccessKey: accessKey, Guildcard: guildcard, IsV1: v1}, nil
}

// GetGCClient looks up a GC client's guildcard by serial number/access key,
// mirroring dclogin.c's gamecube_clients lookup.
func (d *DB) GetGCClient(ctx context.Context, serial, accessKey string) (*model.GCClient, error) {
	var c model.GCClient
	err := d.pool.QueryRow(ctx,
		`SELECT account_id, guildcard FROM gamecube_clients WHERE serial_number = $1 AND access_key = $2`,
		serial, accessKey,
	).Scan(&c.AccountID, &c.Guildcard)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying gamecube client: %w", err)
	}
	return &c, nil
}

// CreateGCClient registers a new GC client with a freshly allocated
// guildcard, no account_id attached yet.
func (d *DB) CreateGCClient(ctx context.Context, serial, accessKey string) (*model.GCClient, error) {
	guildcard, err := d.nextGuildcard(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocating guildcard: %w", err)
	}
	_, err = d.pool.Exec(ctx,
		`INSERT INTO gamecube_clients (serial_number, access_key, guildcard) VALUES ($1, $2, $3)`,
		serial, accessKey, guildcard,
	)
	if err != nil {
		return nil, fmt.Errorf("creating gamecube client: %w", err)
	}
	return &model.GCClient{Guildcard: guildcard}, nil
}

// GetGCPasswordCheck returns the stored password hash and regtime needed to
// verify a GC client's salted-MD5 password (spec.md §4.3). The caller must
// already know accountID is non-nil (a GC client with no account_id has
// never registered a GM password and can't take this path).
func (d *DB) GetGCPasswordCheck(ctx context.Context, accountID int64) (hash string, regTime int64, err error) {
	err = d.pool.QueryRow(ctx,
		`SELECT password, regtime FROM account_data WHERE account_id = $1`, accountID,
	).Scan(&hash, &regTime)
	if err != nil {
		return "", 0, fmt.Errorf("querying gc password check for account %d: %w", accountID, err)
	}
	return hash, regTime, nil
}

// MigratePCLegacyClient reassigns a PC client row whose serial_number is
// still the legacy placeholder "0" to its real serial number on first login
// under the new scheme (spec.md §4.3's PC migration path).
func (d *DB) MigratePCLegacyClient(ctx context.Context, rowAccessKey, newSerial string) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE dreamcast_clients SET serial_number = $1
		 WHERE access_key = $2 AND serial_number = '0'`,
		newSerial, rowAccessKey,
	)
	if err != nil {
		return fmt.Errorf("migrating legacy pc client (access_key=%s): %w", rowAccessKey, err)
	}
	return nil
}
