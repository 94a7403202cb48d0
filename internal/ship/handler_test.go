package ship

import (
	"net"
	"os"
	"strings"
	"testing"

	"github.com/sylverant/psoserv/internal/config"
	"github.com/sylverant/psoserv/internal/constants"
	"github.com/sylverant/psoserv/internal/questlist"
)

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

func pipeClient(t *testing.T, kind Kind) *Client {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { server.Close(); client.Close() })
	c, err := NewClient(server, kind, 0)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestHandleShipLoginSetsState(t *testing.T) {
	h := NewHandler(NewShipgateSession(config.Ship{}), t.TempDir(), &questlist.List{})
	c := pipeClient(t, KindDCv1)

	body := append([]byte{5}, padCString("DC01", dcIDFieldLen)...)
	body = append(body, padCString("12345678", dcSerialFieldLen)...)
	body = append(body, padCString("ABCDEFGH", dcAccessFieldLen)...)

	_, _, keepOpen, err := h.Handle(c, constants.ShipTypeLogin, body)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !keepOpen {
		t.Fatal("expected connection to stay open")
	}
	if c.State() != StateAuthenticated {
		t.Fatalf("got state %v, want StateAuthenticated", c.State())
	}
	if c.LanguageCode() != 5 {
		t.Fatalf("got language code %d, want 5", c.LanguageCode())
	}
}

func TestHandleSimpleMailBugReport(t *testing.T) {
	dir := t.TempDir()
	h := NewHandler(NewShipgateSession(config.Ship{}), dir, &questlist.List{})
	c := pipeClient(t, KindDCv1)
	c.SetGuildcard(777)
	c.SetPlayerName("Reporter")

	body := buildDCSimpleMail(777, constants.BugReportGuildcard, "Reporter", "it broke")
	reply, replyType, keepOpen, err := h.Handle(c, constants.ShipTypeSimpleMail, body)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !keepOpen {
		t.Fatal("expected connection to stay open")
	}
	if replyType != constants.ShipTypeTextMessage {
		t.Fatalf("got reply type %#x, want ShipTypeTextMessage", replyType)
	}
	if !strings.Contains(string(reply), "Thank you") {
		t.Fatalf("got reply %q", reply)
	}

	entries, err := readDirNames(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one bug report file, got %d", len(entries))
	}
}

func TestHandleSimpleMailPlayerMailIgnored(t *testing.T) {
	dir := t.TempDir()
	h := NewHandler(NewShipgateSession(config.Ship{}), dir, &questlist.List{})
	c := pipeClient(t, KindDCv1)

	body := buildDCSimpleMail(1, 2, "Sender", "hi there")
	_, _, keepOpen, err := h.Handle(c, constants.ShipTypeSimpleMail, body)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !keepOpen {
		t.Fatal("expected connection to stay open")
	}

	entries, err := readDirNames(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no bug report file for player mail, got %d", len(entries))
	}
}

func TestHandleMenuSelectListsCategories(t *testing.T) {
	ql := &questlist.List{}
	h := NewHandler(NewShipgateSession(config.Ship{}), t.TempDir(), ql)
	c := pipeClient(t, KindDCv1)

	body := make([]byte, menuSelectBodyLen)
	putUint32LE(body[0:], constants.MenuIDQuestCategories)

	_, replyType, keepOpen, err := h.Handle(c, constants.ShipTypeMenuSelect, body)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !keepOpen {
		t.Fatal("expected connection to stay open")
	}
	if replyType != constants.ShipTypeQuestList {
		t.Fatalf("got reply type %#x, want ShipTypeQuestList", replyType)
	}
}

func TestHandleMenuSelectUnknownMenuIgnored(t *testing.T) {
	h := NewHandler(NewShipgateSession(config.Ship{}), t.TempDir(), &questlist.List{})
	c := pipeClient(t, KindDCv1)

	body := make([]byte, menuSelectBodyLen)
	putUint32LE(body[0:], 0xDEAD)

	_, _, keepOpen, err := h.Handle(c, constants.ShipTypeMenuSelect, body)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !keepOpen {
		t.Fatal("expected connection to stay open")
	}
}
