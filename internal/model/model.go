// Package model holds the data shapes shared by the db and login packages:
// accounts, guildcards, per-client-version login records, and the
// character-restore blob shape carried over the shipgate link.
package model

import (
	"time"

	"github.com/sylverant/psoserv/internal/constants"
)

// Account is one login credential shared by every client version (spec.md
// §4.2). PasswordHash is the accounts.password column as stored; the GC
// salted-MD5 check reads its hash and regtime from account_data instead
// (db.GetGCPasswordCheck), and DC/PC logins check no password.
type Account struct {
	ID           int64
	Login        string
	PasswordHash string
	Guildcard    uint32
	AccessLevel  int
	Banned       bool
	BanExpiresAt time.Time
	LastIP       string
	LastActive   time.Time
}

// GCPassword is the salted-MD5 password record for GC accounts (spec.md
// §4.3): md5(password + "_" + regtime + "_salt"), lowercase hex, compared
// against the stored hash.
type GCPassword struct {
	AccountID int64
	RegTime   int64
	Hash      string // lowercase hex md5
}

// DCClient is a DC v1/v2 client's per-version login state: its serial
// number/access key pair and the guildcard it was assigned. AccountID is nil
// until the client goes on to create a login/password account; DC v1/v2/PC
// clients are otherwise identified purely by serial+access(+DCID) (spec.md
// §4.3, grounded on dclogin.c's handle_login/handle_v2login).
type DCClient struct {
	AccountID    *int64
	DCID         string
	SerialNumber string
	AccessKey    string
	Guildcard    uint32
	IsV1         bool
}

// GCClient is a GameCube client's per-version login state. AccountID is nil
// until the client registers a GM password (spec.md §4.3's salted-MD5 flow).
type GCClient struct {
	AccountID *int64
	Guildcard uint32
}

// CharacterRestore is the character-data blob forwarded between ships on a
// CREQ/character-restore exchange (spec.md §4.4).
type CharacterRestore struct {
	Guildcard uint32
	Slot      int
	Data      [constants.CharacterDataSize]byte
}
