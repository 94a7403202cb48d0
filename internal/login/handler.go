package login

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/sylverant/psoserv/internal/constants"
	"github.com/sylverant/psoserv/internal/db"
	"github.com/sylverant/psoserv/internal/model"
)

// Handler dispatches decrypted login packets by type (spec.md §4.3),
// grounded on dclogin.c's process_dclogin_packet switch. Structurally
// grounded on the teacher's internal/login/handler.go (a single dispatch
// method returning a reply buffer and a keep-open flag).
type Handler struct {
	repo     ClientRepository
	shipgate *ShipgateClient
	throttle *Throttle
}

// NewHandler creates a login packet Handler.
func NewHandler(repo ClientRepository, shipgate *ShipgateClient, throttle *Throttle) *Handler {
	return &Handler{repo: repo, shipgate: shipgate, throttle: throttle}
}

// Handle dispatches one decoded packet. It returns the reply body (nil if
// no reply), the reply's packet type, and whether the connection should
// stay open.
func (h *Handler) Handle(ctx context.Context, c *Client, typ uint16, body []byte) (reply []byte, replyType uint16, keepOpen bool, err error) {
	switch typ {
	case constants.LoginTypeDCLogin0:
		return encodeSimple(1), constants.LoginTypeDCLogin0, true, nil

	case constants.LoginTypeDCLogin2:
		return encodeSimple(1), constants.LoginTypeDCLogin2, true, nil

	case constants.LoginTypeClientLogin:
		return h.handleDCv1Login(ctx, c, body)

	case constants.LoginTypeDCv2LoginA:
		return h.handleDCv2PCLogin(ctx, c, body)

	case constants.LoginTypeDCChecksum:
		return encodeSimple(1), constants.LoginTypeDCChecksumAck, true, nil

	case constants.LoginTypeTimestamp:
		return encodeTimestamp(currentTimestamp()), constants.LoginTypeTimestamp, true, nil

	case constants.LoginTypeShipListReqDC, constants.LoginTypeShipList:
		return h.handleShipList(c)

	case constants.LoginTypeInfoRequest:
		return encodeInfoReply("Nothing here."), constants.LoginTypeInfoRequest, true, nil

	case constants.LoginTypeShipSelect:
		return h.handleShipSelect(c, body)

	case constants.LoginTypeGCVerifyLicense:
		return h.handleGCVerifyLicense(ctx, c, body)

	case constants.LoginTypeGCLoginC:
		return h.handleGCLoginC(ctx, c, body)

	case constants.LoginTypeGCLoginE:
		return h.handleGCLoginE(ctx, c, body)

	case constants.LoginTypeLoginD:
		return h.handleLoginD(c, body)

	default:
		slog.Debug("login: unhandled packet type", "type", fmt.Sprintf("%#x", typ), "ip", c.IP(), "conn", c.ConnID())
		return nil, 0, true, nil
	}
}

// handleDCv1Login implements dclogin.c's handle_login: look up (dc_id,
// serial, access) in the DC clients table, reusing the guildcard if found,
// else allocating a fresh one.
func (h *Handler) handleDCv1Login(ctx context.Context, c *Client, body []byte) ([]byte, uint16, bool, error) {
	lang, dcID, serial, access, err := decodeDCLogin(body)
	if err != nil {
		return nil, 0, false, err
	}
	c.SetLanguageCode(lang)
	c.SetIdentity(dcID, serial, access)

	dc, err := h.repo.GetDCClient(ctx, dcID, serial, access, true)
	if err != nil {
		return nil, 0, false, fmt.Errorf("looking up dc v1 client: %w", err)
	}
	if dc == nil {
		dc, err = h.repo.CreateDCClient(ctx, dcID, serial, access, true)
		if err != nil {
			return nil, 0, false, fmt.Errorf("creating dc v1 client: %w", err)
		}
	}

	c.SetGuildcard(dc.Guildcard)
	c.SetState(StateAuthenticated)
	return encodeDCSecurity(dc.Guildcard, lang), constants.LoginTypeDCSecurity, true, nil
}

// handleDCv2PCLogin implements dclogin.c's handle_v2login: DC v2 and PC
// clients both match by (serial, access) among non-v1 rows; dc_id is
// recorded on a new DC v2 row but is not part of the match. PC clients fall
// back to migrating a legacy serial_number='0' row, and are disconnected if
// neither path matches.
func (h *Handler) handleDCv2PCLogin(ctx context.Context, c *Client, body []byte) ([]byte, uint16, bool, error) {
	dcID, serial, access, err := decodeDCV2Login(body)
	if err != nil {
		return nil, 0, false, err
	}
	c.SetIdentity(dcID, serial, access)
	isPC := c.Kind() == KindPC

	dc, err := h.repo.GetDCClient(ctx, dcID, serial, access, false)
	if err != nil {
		return nil, 0, false, fmt.Errorf("looking up dc v2/pc client: %w", err)
	}

	if dc == nil && isPC {
		dc, err = h.migratePCLegacyClient(ctx, access, serial)
		if err != nil {
			return nil, 0, false, err
		}
		if dc == nil {
			// No legacy row either — dclogin.c disconnects unregistered PC clients.
			return nil, 0, false, nil
		}
	} else if dc == nil {
		dc, err = h.repo.CreateDCClient(ctx, dcID, serial, access, false)
		if err != nil {
			return nil, 0, false, fmt.Errorf("creating dc v2 client: %w", err)
		}
	}

	c.SetGuildcard(dc.Guildcard)
	c.SetState(StateAuthenticated)
	// dclogin.c forces the client to send a language-code-bearing packet
	// next since this one doesn't carry it.
	return encodeSimple(2), constants.LoginTypeDCv2LoginA, true, nil
}

func (h *Handler) migratePCLegacyClient(ctx context.Context, access, newSerial string) (*model.DCClient, error) {
	if err := h.repo.MigratePCLegacyClient(ctx, access, newSerial); err != nil {
		return nil, fmt.Errorf("migrating legacy pc client: %w", err)
	}
	dc, err := h.repo.GetDCClient(ctx, "", newSerial, access, false)
	if err != nil {
		return nil, fmt.Errorf("re-querying migrated pc client: %w", err)
	}
	return dc, nil
}

func (h *Handler) handleGCVerifyLicense(ctx context.Context, c *Client, body []byte) ([]byte, uint16, bool, error) {
	serial, access, err := decodeGCHLCheck(body)
	if err != nil {
		return nil, 0, false, err
	}
	ok, err := h.checkGCPassword(ctx, serial, access, "")
	if err != nil {
		return nil, 0, false, err
	}
	if !ok {
		h.throttle.RecordFailure(c.IP())
		return nil, 0, false, nil
	}
	h.throttle.RecordSuccess(c.IP())
	return encodeSimple(1), constants.LoginTypeDCv2LoginA, true, nil
}

func (h *Handler) handleGCLoginC(ctx context.Context, c *Client, body []byte) ([]byte, uint16, bool, error) {
	serial, access, password, err := decodeGCLoginC(body)
	if err != nil {
		return nil, 0, false, err
	}
	ok, err := h.checkGCPassword(ctx, serial, access, password)
	if err != nil {
		return nil, 0, false, err
	}
	if !ok {
		h.throttle.RecordFailure(c.IP())
		return nil, 0, false, nil
	}
	h.throttle.RecordSuccess(c.IP())
	c.SetState(StateAuthenticated)
	return encodeSimple(1), constants.LoginTypeGCLoginC, true, nil
}

// checkGCPassword implements the salted-MD5 check shared by
// handle_gchlcheck and handle_gcloginc: resolve (serial, access) to a
// guildcard, its account, and the account's password hash, then compare
// md5(password + "_" + regtime + "_salt"). A GC client with no account_id
// yet (never registered a GM password) is treated as "no password set",
// i.e. verification fails — dclogin.c has no INSERT path that creates one.
func (h *Handler) checkGCPassword(ctx context.Context, serial, access, password string) (bool, error) {
	gc, err := h.repo.GetGCClient(ctx, serial, access)
	if err != nil {
		return false, fmt.Errorf("looking up gc client: %w", err)
	}
	if gc == nil || gc.AccountID == nil {
		return false, nil
	}
	hash, regTime, err := h.repo.GetGCPasswordCheck(ctx, *gc.AccountID)
	if err != nil {
		return false, fmt.Errorf("looking up gc password: %w", err)
	}
	return db.GCPasswordHash(password, regTime) == hash, nil
}

func (h *Handler) handleGCLoginE(ctx context.Context, c *Client, body []byte) ([]byte, uint16, bool, error) {
	lang, serial, access, err := decodeGCLoginDE(body)
	if err != nil {
		return nil, 0, false, err
	}
	c.SetLanguageCode(lang)

	gc, err := h.repo.GetGCClient(ctx, serial, access)
	if err != nil {
		return nil, 0, false, fmt.Errorf("looking up gc client: %w", err)
	}
	if gc == nil {
		return nil, 0, false, nil
	}

	c.SetGuildcard(gc.Guildcard)
	c.SetState(StateAuthenticated)
	return encodeDCSecurity(gc.Guildcard, lang), constants.LoginTypeDCSecurity, true, nil
}

// handleLoginD implements dclogin.c's handle_logind: grabs the language
// code from a packet sent purely to carry it; the guildcard was already
// resolved on this connection.
func (h *Handler) handleLoginD(c *Client, body []byte) ([]byte, uint16, bool, error) {
	lang, _, _, err := decodeGCLoginDE(body)
	if err != nil {
		return nil, 0, false, err
	}
	c.SetLanguageCode(lang)
	return encodeDCSecurity(c.Guildcard(), lang), constants.LoginTypeDCSecurity, true, nil
}

func (h *Handler) handleShipList(c *Client) ([]byte, uint16, bool, error) {
	ships := h.shipgate.Ships()
	return encodeShipList(ships), constants.LoginTypeShipList, true, nil
}

// handleShipSelect implements dclogin.c's handle_ship_select: resolve the
// chosen ship and queue a redirect to it (spec.md §4.3's "Ship selection").
func (h *Handler) handleShipSelect(c *Client, body []byte) ([]byte, uint16, bool, error) {
	if len(body) < 8 {
		return nil, 0, false, fmt.Errorf("ship select body too short: %d", len(body))
	}
	menuID := binary.LittleEndian.Uint32(body[0:4])
	itemID := binary.LittleEndian.Uint32(body[4:8])
	if menuID != constants.MenuIDShipSelect {
		// Offline quest menu — out of scope here; just acknowledge.
		return nil, 0, true, nil
	}

	ship, ok := h.shipgate.Ship(itemID)
	if !ok {
		return nil, 0, false, nil
	}

	c.SetState(StateRedirecting)
	return encodeShipRedirect(ship), constants.LoginTypeRedirect, false, nil
}
