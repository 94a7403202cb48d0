package shipgate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sylverant/psoserv/internal/constants"
	"github.com/sylverant/psoserv/internal/db"
)

// Handler dispatches shipgate packets by type, grounded structurally on the
// teacher's internal/gslistener Handler (db + dispatch-by-opcode) but keyed
// by the Shipgate packet type table instead of the GS-auth opcode set.
type Handler struct {
	db     *db.DB
	roster *Roster
}

// NewHandler creates a Handler backed by database and roster.
func NewHandler(database *db.DB, roster *Roster) *Handler {
	return &Handler{db: database, roster: roster}
}

// Handle processes one decrypted packet body from ship sender and enqueues
// any response(s) onto the roster's outbound queues. It never writes
// directly to a connection — every reply goes through enqueue so that FIFO
// ordering per (gateway, ship) is preserved even when a handler needs to
// answer a different ship than the one that sent the packet (e.g. a
// forwarded packet's destination).
func (h *Handler) Handle(ctx context.Context, sender *ShipEntry, typ uint16, body []byte) error {
	switch typ {
	case constants.ShipgateTypeSStatus:
		return h.handleSStatus(sender, body)
	case constants.ShipgateTypeFWDC, constants.ShipgateTypeFWPC:
		return h.handleForward(sender, typ, body)
	case constants.ShipgateTypeCount:
		return h.handleCount(sender, body)
	case constants.ShipgateTypePing:
		return enqueue(sender, constants.ShipgateTypePing,
			constants.ShipgateFlagNoDeflate|constants.ShipgateFlagNoEncrypt|constants.ShipgateFlagResponse, nil)
	case constants.ShipgateTypeCReq:
		return h.handleCReq(ctx, sender, body)
	case constants.ShipgateTypeGMLogin:
		return h.handleGMLogin(ctx, sender, body)
	case constants.ShipgateTypeError:
		ft, reason, err := DecodeError(body)
		if err != nil {
			return err
		}
		slog.Warn("shipgate peer reported error", "ship_id", sender.ID, "failed_type", ft, "reason", reason)
		return nil
	default:
		return fmt.Errorf("shipgate: unknown packet type %#x from ship %d", typ, sender.ID)
	}
}

// handleSStatus applies a ship's own status update and fans it out to every
// other connected ship (spec.md §4.4's roster invariant: "every broadcast...
// is delivered to every currently-connected ship except the originator, in
// the order Shipgate observed the triggering event"). The initial SSTATUS a
// ship sends to announce itself on connect is handled separately by
// broadcastConnect; this path covers status changes after that.
func (h *Handler) handleSStatus(sender *ShipEntry, body []byte) error {
	info, err := DecodeSStatus(body)
	if err != nil {
		return err
	}
	sender.Name = info.Name
	sender.Addr = info.Addr
	sender.IntAddr = info.IntAddr
	sender.Port = info.Port
	sender.Status = info.Status
	slog.Info("ship status update", "ship_id", sender.ID, "name", sender.Name, "status", sender.Status)

	out := EncodeSStatus(info)
	for _, other := range h.roster.All() {
		if other.ID == sender.ID {
			continue
		}
		if err := enqueue(other, constants.ShipgateTypeSStatus, constants.ShipgateFlagNoDeflate, out); err != nil {
			slog.Warn("shipgate sstatus fanout failed", "ship_id", other.ID, "err", err)
		}
	}
	return nil
}

// handleForward routes a forwarded DC/GC or PC client packet to its
// destination ship, keyed by ship_id (spec.md §4.4).
func (h *Handler) handleForward(sender *ShipEntry, typ uint16, body []byte) error {
	_, destID, clientPacket, err := DecodeForward(body)
	if err != nil {
		return err
	}
	if len(clientPacket) == 0 {
		return fmt.Errorf("shipgate: empty forwarded client packet from ship %d", sender.ID)
	}

	dest := h.roster.Get(destID)
	if dest == nil {
		return enqueue(sender, constants.ShipgateTypeError,
			constants.ShipgateFlagNoDeflate, EncodeError(typ, fmt.Sprintf("unknown destination ship %d", destID)))
	}

	return enqueue(dest, typ, constants.ShipgateFlagNoDeflate, EncodeForward(sender.ID, destID, clientPacket))
}

// handleCount fans a ship's live player count out to every other connected
// ship (spec.md §4.4: "COUNT: live (clients, games) update originated by a
// ship; Shipgate fans out to all other ships").
func (h *Handler) handleCount(sender *ShipEntry, body []byte) error {
	count, err := DecodeCount(body)
	if err != nil {
		return err
	}
	slog.Debug("ship player count", "ship_id", sender.ID, "count", count)

	for _, other := range h.roster.All() {
		if other.ID == sender.ID {
			continue
		}
		if err := enqueue(other, constants.ShipgateTypeCount, constants.ShipgateFlagNoDeflate, body); err != nil {
			slog.Warn("shipgate count fanout failed", "ship_id", other.ID, "err", err)
		}
	}
	return nil
}

// handleCReq answers a character-data restore request (spec.md §4.4's
// CREQ: "delivered from gateway store to the requesting ship, carrying a
// fixed 1052-byte character blob plus guildcard and slot"). The request has
// the same full-size body as the answer, but only its guildcard/slot are
// read; its data field is ignored. The blob bytes it answers with come from
// the gateway's opaque character store, never interpreted here.
func (h *Handler) handleCReq(ctx context.Context, sender *ShipEntry, body []byte) error {
	guildcard, slot, _, err := DecodeCReq(body)
	if err != nil {
		return err
	}
	slog.Debug("character restore request", "ship_id", sender.ID, "guildcard", guildcard, "slot", slot)

	blob, err := h.db.GetCharacterBlob(ctx, guildcard, slot)
	if err != nil {
		return fmt.Errorf("looking up character blob: %w", err)
	}
	if blob == nil {
		blob = make([]byte, constants.CharacterDataSize)
	}

	return enqueue(sender, constants.ShipgateTypeCReqAns,
		constants.ShipgateFlagNoDeflate|constants.ShipgateFlagResponse, EncodeCReq(guildcard, slot, blob))
}

// handleGMLogin answers a ship's forwarded GM-authorization check (spec.md
// §4.4): the shipgate owns the account database, so it resolves the
// guildcard's access level itself rather than trusting the ship. An unknown
// guildcard or a non-positive access level answers failure via the
// Shipgate Failure flag; the body always echoes guildcard/block back so the
// ship can match the reply to its pending request.
func (h *Handler) handleGMLogin(ctx context.Context, sender *ShipEntry, body []byte) error {
	req, err := DecodeGMLogin(body)
	if err != nil {
		return err
	}

	acc, err := h.db.GetAccountByGuildcard(ctx, req.Guildcard)
	if err != nil {
		return fmt.Errorf("looking up account for gmlogin: %w", err)
	}

	flags := uint16(constants.ShipgateFlagNoDeflate | constants.ShipgateFlagResponse)
	privilege := byte(0)
	if acc == nil || acc.Banned || acc.AccessLevel <= 0 {
		flags |= constants.ShipgateFlagFailure
	} else {
		privilege = byte(acc.AccessLevel)
	}

	reply := GMLoginInfo{Guildcard: req.Guildcard, Block: req.Block, Privilege: privilege}
	return enqueue(sender, constants.ShipgateTypeGMLogin, flags, EncodeGMLogin(reply))
}
