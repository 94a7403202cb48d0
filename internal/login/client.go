package login

import (
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/sylverant/psoserv/internal/crypto"
	"github.com/sylverant/psoserv/internal/wire"
)

// Kind identifies which client family is on the other end of a connection —
// distinct from wire.Variant, which only distinguishes header shapes (DC
// and GC share a header shape but not a login flow).
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

// Client represents a single client connection to the login server
// (spec.md §4.1/§4.3). Structurally grounded on the teacher's
// internal/login/client.go (mutex-guarded state, getter/setter shape);
// the fields themselves are PSO's, not L2's.
type Client struct {
	conn   net.Conn
	ip     string
	kind   Kind
	connID string

	mu           sync.Mutex
	cipher       *crypto.Session
	state        ConnectionState
	guildcard    uint32
	languageCode byte
	dcID         string
	serial       string
	accessKey    string
}

// NewClient creates a new login client state for the given connection.
func NewClient(conn net.Conn, kind Kind) (*Client, error) {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return nil, fmt.Errorf("splitting host port: %w", err)
	}

	return &Client{
		conn:   conn,
		ip:     host,
		kind:   kind,
		connID: uuid.NewString(),
		state:  StateAwaitWelcomeAck,
	}, nil
}

// IP returns the client's remote IP address.
func (c *Client) IP() string {
	return c.ip
}

// ConnID is a correlation id for this connection, stable for its lifetime,
// so every slog line for one client can be grepped together even across an
// IP reused by a later, unrelated connection.
func (c *Client) ConnID() string {
	return c.connID
}

// Kind returns the client family (DC v1/v2, PC, GC).
func (c *Client) Kind() Kind {
	return c.kind
}

// WireVariant returns the header shape this client's packets use.
func (c *Client) WireVariant() wire.Variant {
	return c.kind.wireVariant()
}

// SetCipher installs the session cipher established by the welcome
// handshake; nil until sendWelcome installs it and moves the client to
// StateAwaitLogin.
func (c *Client) SetCipher(s *crypto.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cipher = s
}

// Cipher returns the session cipher, or nil before the welcome handshake.
func (c *Client) Cipher() *crypto.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cipher
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetState sets the connection state.
func (c *Client) SetState(s ConnectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// Guildcard returns the client's assigned guildcard, 0 before authentication.
func (c *Client) Guildcard() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.guildcard
}

// SetGuildcard sets the client's assigned guildcard.
func (c *Client) SetGuildcard(gc uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guildcard = gc
}

// LanguageCode returns the language code the client reported.
func (c *Client) LanguageCode() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.languageCode
}

// SetLanguageCode records the language code reported by a login packet.
func (c *Client) SetLanguageCode(l byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.languageCode = l
}

// SetIdentity records the serial/access/dc_id triple presented at login, for
// use by later packets on the same connection (ship transfer, etc.).
func (c *Client) SetIdentity(dcID, serial, accessKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dcID, c.serial, c.accessKey = dcID, serial, accessKey
}

// Identity returns the serial/access/dc_id triple set by SetIdentity.
func (c *Client) Identity() (dcID, serial, accessKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dcID, c.serial, c.accessKey
}
