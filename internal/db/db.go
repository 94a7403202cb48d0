// Package db wraps the PostgreSQL connection pool and the account,
// guildcard, and per-client-version repositories the login and shipgate
// services need (spec.md §4.2/§4.3). Grounded on the teacher's
// internal/db/db.go account-repository shape, generalized from one client
// version's login table to four (DC v1, DC v2, PC, GC).
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sylverant/psoserv/internal/model"
)

// DB wraps a pgx connection pool shared by every repository method below.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a DB handle.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying pgx pool, for goose migrations.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

// GetAccountByLogin retrieves an account by login. Returns nil, nil if the
// account does not exist.
func (d *DB) GetAccountByLogin(ctx context.Context, login string) (*model.Account, error) {
	login = strings.ToLower(login)
	var acc model.Account
	err := d.pool.QueryRow(ctx,
		`SELECT id, login, password, guildcard, access_level, banned, ban_expires_at, last_ip, last_active
		 FROM accounts WHERE login = $1`, login,
	).Scan(&acc.ID, &acc.Login, &acc.PasswordHash, &acc.Guildcard, &acc.AccessLevel,
		&acc.Banned, &acc.BanExpiresAt, &acc.LastIP, &acc.LastActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying account %q: %w", login, err)
	}
	return &acc, nil
}

// GetAccountByGuildcard retrieves an account by its guildcard number, used by
// the shipgate's GMLOGIN check (spec.md §4.4) to resolve a ship's reported
// guildcard to an access level without the ship ever seeing the account
// table itself. Returns nil, nil if no account holds that guildcard.
func (d *DB) GetAccountByGuildcard(ctx context.Context, guildcard uint32) (*model.Account, error) {
	var acc model.Account
	err := d.pool.QueryRow(ctx,
		`SELECT id, login, password, guildcard, access_level, banned, ban_expires_at, last_ip, last_active
		 FROM accounts WHERE guildcard = $1`, guildcard,
	).Scan(&acc.ID, &acc.Login, &acc.PasswordHash, &acc.Guildcard, &acc.AccessLevel,
		&acc.Banned, &acc.BanExpiresAt, &acc.LastIP, &acc.LastActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying account by guildcard %d: %w", guildcard, err)
	}
	return &acc, nil
}

// CreateAccount inserts a new account with a freshly allocated guildcard and
// returns it. No login handler calls it: DC v1/v2/PC and GC logins
// register through CreateDCClient/CreateGCClient, which need no accounts row.
func (d *DB) CreateAccount(ctx context.Context, login, passwordHash, ip string) (*model.Account, error) {
	login = strings.ToLower(login)
	guildcard, err := d.nextGuildcard(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocating guildcard: %w", err)
	}

	_, err = d.pool.Exec(ctx,
		`INSERT INTO accounts (login, password, guildcard, last_active, access_level, last_ip)
		 VALUES ($1, $2, $3, $4, 0, $5)`,
		login, passwordHash, guildcard, time.Now(), ip,
	)
	if err != nil {
		return nil, fmt.Errorf("creating account %q: %w", login, err)
	}
	slog.Info("auto-created account", "login", login, "guildcard", guildcard)

	return &model.Account{Login: login, PasswordHash: passwordHash, Guildcard: guildcard, LastIP: ip}, nil
}

// nextGuildcard allocates the next guildcard number from a single-row
// sequence table, so every client version shares one guildcard namespace.
func (d *DB) nextGuildcard(ctx context.Context) (uint32, error) {
	var next uint32
	err := d.pool.QueryRow(ctx,
		`UPDATE guildcard_sequence SET next_value = next_value + 1 RETURNING next_value - 1`,
	).Scan(&next)
	if err != nil {
		return 0, err
	}
	return next, nil
}

// UpdateLastLogin updates last_active and last_ip on successful login.
func (d *DB) UpdateLastLogin(ctx context.Context, login, ip string) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE accounts SET last_active = $1, last_ip = $2 WHERE login = $3`,
		time.Now(), ip, strings.ToLower(login),
	)
	if err != nil {
		return fmt.Errorf("updating last login for %q: %w", login, err)
	}
	return nil
}
