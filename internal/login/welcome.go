package login

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/sylverant/psoserv/internal/crypto"
	"github.com/sylverant/psoserv/internal/wire"
)

// welcomeCopyright is the fixed banner string PSO clients expect at the
// front of the welcome packet. The original value isn't in the retrieval
// pack's excerpts; this is a recognizable placeholder (see DESIGN.md).
const welcomeCopyright = "Sylverant Login Server. Copyright SonicTeam, LLC. 2004"

const welcomeBodyLen = 96

// WelcomeType is the packet type PSO clients expect for the unencrypted
// key-exchange handshake.
const WelcomeType = 0x03

// buildWelcomeBody writes the copyright banner followed by the two 32-bit
// vector seeds (server, then client) that both sides fold into the session
// cipher key (spec.md §4.1).
func buildWelcomeBody(serverSeed, clientSeed uint32) []byte {
	buf := make([]byte, welcomeBodyLen)
	copy(buf, welcomeCopyright)
	binary.LittleEndian.PutUint32(buf[64:], serverSeed)
	binary.LittleEndian.PutUint32(buf[68:], clientSeed)
	return buf
}

func randomSeed() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("generating welcome seed: %w", err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// sendWelcome writes the unencrypted welcome handshake to c's connection and
// installs the derived session cipher, advancing c to StateAwaitLogin. The
// handshake itself travels in the clear — wire.WritePacket is called with a
// nil cipher standing in for "no encryption yet".
func sendWelcome(c *Client, scratch []byte) error {
	serverSeed, err := randomSeed()
	if err != nil {
		return err
	}
	clientSeed, err := randomSeed()
	if err != nil {
		return err
	}

	body := buildWelcomeBody(serverSeed, clientSeed)
	if err := wire.WritePacket(c.conn, c.WireVariant(), nil, 0, WelcomeType, body, scratch); err != nil {
		return fmt.Errorf("writing welcome packet: %w", err)
	}

	key := crypto.DeriveWelcomeKey(serverSeed, clientSeed)
	var sess *crypto.Session
	if c.Kind() == KindPC {
		sess = crypto.NewPCSession(key)
	} else {
		sess, err = crypto.NewRC4Session(key)
		if err != nil {
			return fmt.Errorf("deriving rc4 session: %w", err)
		}
	}
	c.SetCipher(sess)
	c.SetState(StateAwaitLogin)
	return nil
}
