package ship

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sylverant/psoserv/internal/constants"
	"github.com/sylverant/psoserv/internal/questlist"
)

// Handler dispatches decrypted ship packets by type (spec.md §4.5).
// Structurally grounded on internal/login.Handler's single dispatch method;
// gameplay packet types beyond the three aspects spec.md names (login
// binding, bug reports, account-critical forwards) are logged and ignored,
// matching spec.md's "only three aspects matter because the rest is game
// logic".
type Handler struct {
	shipgate     *ShipgateSession
	bugReportDir string
	quests       *questlist.List
}

// NewHandler creates a ship packet Handler.
func NewHandler(sg *ShipgateSession, bugReportDir string, quests *questlist.List) *Handler {
	return &Handler{shipgate: sg, bugReportDir: bugReportDir, quests: quests}
}

// Handle dispatches one decoded packet. It returns the reply body (nil if
// no reply), the reply's packet type, and whether the connection should
// stay open.
func (h *Handler) Handle(c *Client, typ uint16, body []byte) (reply []byte, replyType uint16, keepOpen bool, err error) {
	switch typ {
	case constants.ShipTypeLogin:
		return h.handleShipLogin(c, body)

	case constants.ShipTypeSimpleMail:
		return h.handleSimpleMail(c, body)

	case constants.ShipTypeMenuSelect:
		return h.handleMenuSelect(c, body)

	default:
		slog.Debug("ship: unhandled packet type", "type", fmt.Sprintf("%#x", typ), "ip", c.IP(), "conn", c.ConnID(), "block", c.BlockID())
		return nil, 0, true, nil
	}
}

// handleShipLogin records the language code from the client's post-redirect
// login and moves the connection to StateAuthenticated (spec.md §4.1's
// AwaitLogin → Authenticated step); the ship doesn't re-authenticate. The
// dc_id/serial/access fields are decoded but not kept, and no guildcard is
// bound here, so c.Guildcard() keeps its previous value (zero on a new
// connection).
func (h *Handler) handleShipLogin(c *Client, body []byte) ([]byte, uint16, bool, error) {
	lang, _, _, _, err := decodeShipLogin(body)
	if err != nil {
		return nil, 0, false, err
	}
	c.SetLanguageCode(lang)
	c.SetState(StateAuthenticated)

	if err := h.shipgate.RequestGMLogin(c.Guildcard(), uint32(c.BlockID())); err != nil {
		slog.Debug("ship: gm login check skipped", "guildcard", c.Guildcard(), "err", err)
	}
	return nil, 0, true, nil
}

// handleMenuSelect serves the quest catalog's two navigation levels:
// selecting constants.MenuIDQuestCategories lists the categories, selecting
// a category's own menu id lists that category's quests (ship_packets.h's
// send_quest_categories / send_quest_list). Any other menu id is gameplay
// menu navigation, out of scope here.
func (h *Handler) handleMenuSelect(c *Client, body []byte) ([]byte, uint16, bool, error) {
	menuID, itemID, err := decodeMenuSelect(body)
	if err != nil {
		return nil, 0, false, err
	}

	var entries []questEntry
	switch {
	case menuID == constants.MenuIDQuestCategories:
		for _, cat := range h.quests.Categories() {
			entries = append(entries, questEntry{MenuID: constants.MenuIDQuestCategories, ItemID: cat.MenuID, Name: cat.Name})
		}
	default:
		cat, ok := findCategory(h.quests.Categories(), menuID)
		if !ok {
			slog.Debug("ship: menu select outside quest catalog", "menu_id", fmt.Sprintf("%#x", menuID), "item_id", itemID)
			return nil, 0, true, nil
		}
		for _, q := range cat.Quests {
			entries = append(entries, questEntry{MenuID: cat.MenuID, ItemID: q.ItemID, Name: q.Name, Desc: q.Short})
		}
	}

	if c.Kind() == KindPC {
		return encodePCQuestList(entries), constants.ShipTypeQuestList, true, nil
	}
	return encodeDCQuestList(entries), constants.ShipTypeQuestList, true, nil
}

func findCategory(categories []questlist.Category, menuID uint32) (questlist.Category, bool) {
	for _, cat := range categories {
		if cat.MenuID == menuID {
			return cat, true
		}
	}
	return questlist.Category{}, false
}

// handleSimpleMail captures bug reports and otherwise logs player-to-player
// mail, which is out of scope gameplay (spec.md §1's non-goals, §4.5.3's
// bug-report carve-out).
func (h *Handler) handleSimpleMail(c *Client, body []byte) ([]byte, uint16, bool, error) {
	var destGC uint32
	var text []byte
	isPC := c.Kind() == KindPC

	if isPC {
		_, dgc, t, err := decodePCSimpleMail(body)
		if err != nil {
			return nil, 0, false, err
		}
		destGC, text = dgc, t
	} else {
		_, dgc, _, t, err := decodeDCSimpleMail(body)
		if err != nil {
			return nil, 0, false, err
		}
		destGC, text = dgc, t
	}

	if !isBugReport(destGC) {
		slog.Debug("ship: player mail ignored (out of scope)", "sender", c.Guildcard())
		return nil, 0, true, nil
	}

	if err := writeBugReport(h.bugReportDir, time.Now(), c.Guildcard(), c.PlayerName(), int(c.Kind()), text, isPC); err != nil {
		slog.Warn("ship: bug report write failed", "guildcard", c.Guildcard(), "err", err)
		return encodeTextMessage("Bug report could not be saved."), constants.ShipTypeTextMessage, true, nil
	}
	return encodeTextMessage("Thank you for your report"), constants.ShipTypeTextMessage, true, nil
}
