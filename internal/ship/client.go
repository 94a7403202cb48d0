package ship

import (
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/sylverant/psoserv/internal/crypto"
	"github.com/sylverant/psoserv/internal/wire"
)

// Kind identifies which client family is on the other end of a connection,
// mirroring internal/login.Kind — the ship accepts the same four client
// families, handed off from the login service.
type Kind int

const (
	KindDCv1 Kind = iota
	KindDCv2
	KindPC
	KindGC
)

func (k Kind) wireVariant() wire.Variant {
	if k == KindPC {
		return wire.VariantPC
	}
	return wire.VariantDCGC
}

// ConnectionState is the per-client state machine a ship connection is
// driven through (spec.md §4.1), identical in shape to the login service's.
type ConnectionState int

const (
	StateAwaitWelcomeAck ConnectionState = iota
	StateAwaitLogin
	StateAuthenticated
	StateRedirecting
	StateClosed
)

// Client represents one connected game client on a single block listener.
// Structurally grounded on internal/login.Client (mutex-guarded getter/
// setter shape); the block/guildcard-routing fields are the ship's own.
type Client struct {
	conn    net.Conn
	ip      string
	kind    Kind
	blockID int
	connID  string

	mu           sync.Mutex
	cipher       *crypto.Session
	state        ConnectionState
	guildcard    uint32
	languageCode byte
	playerName   string
}

// NewClient creates a new ship client state for the given connection.
func NewClient(conn net.Conn, kind Kind, blockID int) (*Client, error) {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return nil, fmt.Errorf("splitting host port: %w", err)
	}
	return &Client{
		conn:    conn,
		ip:      host,
		kind:    kind,
		blockID: blockID,
		connID:  uuid.NewString(),
		state:   StateAwaitWelcomeAck,
	}, nil
}

func (c *Client) IP() string          { return c.ip }
func (c *Client) Kind() Kind          { return c.kind }
func (c *Client) BlockID() int        { return c.blockID }

// ConnID is a correlation id for this connection, stable for its lifetime —
// mirrors internal/login.Client.ConnID.
func (c *Client) ConnID() string { return c.connID }
func (c *Client) WireVariant() wire.Variant {
	return c.kind.wireVariant()
}

func (c *Client) SetCipher(s *crypto.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cipher = s
}

func (c *Client) Cipher() *crypto.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cipher
}

func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) SetState(s ConnectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

func (c *Client) Guildcard() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.guildcard
}

func (c *Client) SetGuildcard(gc uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guildcard = gc
}

func (c *Client) LanguageCode() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.languageCode
}

func (c *Client) SetLanguageCode(l byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.languageCode = l
}

func (c *Client) PlayerName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerName
}

func (c *Client) SetPlayerName(n string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerName = n
}
