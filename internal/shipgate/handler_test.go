package shipgate

import (
	"testing"

	"github.com/sylverant/psoserv/internal/constants"
)

func drain(t *testing.T, e *ShipEntry) (typ, flags uint16, payload []byte) {
	t.Helper()
	select {
	case env := <-e.Outbound:
		typ, flags, payload = splitEnvelope(env)
		return
	default:
		t.Fatalf("ship_id %d: expected a queued packet, found none", e.ID)
		return
	}
}

func assertEmpty(t *testing.T, e *ShipEntry) {
	t.Helper()
	select {
	case env := <-e.Outbound:
		typ, _, _ := splitEnvelope(env)
		t.Fatalf("ship_id %d: expected no queued packet, found type %#x", e.ID, typ)
	default:
	}
}

func TestHandleSStatusFansOutToOtherShipsOnly(t *testing.T) {
	roster := NewRoster()
	a := newShipEntry(1, "Alpha", 0, 0, 0)
	b := newShipEntry(2, "Beta", 0, 0, 0)
	c := newShipEntry(3, "Gamma", 0, 0, 0)
	for _, e := range []*ShipEntry{a, b, c} {
		if err := roster.Register(e); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	h := NewHandler(nil, roster)
	update := ShipStatusInfo{Name: "Alpha2", ShipID: 1, Status: StatusUp}
	if err := h.handleSStatus(a, EncodeSStatus(update)); err != nil {
		t.Fatalf("handleSStatus: %v", err)
	}

	assertEmpty(t, a)
	for _, e := range []*ShipEntry{b, c} {
		typ, _, body := drain(t, e)
		if typ != constants.ShipgateTypeSStatus {
			t.Fatalf("ship_id %d: type = %#x, want SSTATUS", e.ID, typ)
		}
		got, err := DecodeSStatus(body)
		if err != nil {
			t.Fatalf("DecodeSStatus: %v", err)
		}
		if got.Name != "Alpha2" || got.ShipID != 1 {
			t.Fatalf("ship_id %d: got %+v, want name=Alpha2 ship_id=1", e.ID, got)
		}
	}
}

func TestHandleCountFansOutToOtherShipsOnly(t *testing.T) {
	roster := NewRoster()
	a := newShipEntry(1, "Alpha", 0, 0, 0)
	b := newShipEntry(2, "Beta", 0, 0, 0)
	for _, e := range []*ShipEntry{a, b} {
		if err := roster.Register(e); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	h := NewHandler(nil, roster)
	if err := h.handleCount(a, EncodeCount(42)); err != nil {
		t.Fatalf("handleCount: %v", err)
	}

	assertEmpty(t, a)
	typ, _, body := drain(t, b)
	if typ != constants.ShipgateTypeCount {
		t.Fatalf("type = %#x, want COUNT", typ)
	}
	got, err := DecodeCount(body)
	if err != nil {
		t.Fatalf("DecodeCount: %v", err)
	}
	if got != 42 {
		t.Fatalf("count = %d, want 42", got)
	}
}

func TestBroadcastConnectReplaysExistingAndAnnouncesNewcomer(t *testing.T) {
	existingEntry := newShipEntry(1, "Alpha", 0, 0, 0)
	newcomer := newShipEntry(2, "Beta", 0, 0, 0)

	broadcastConnect(newcomer, []*ShipEntry{existingEntry})

	typ, _, body := drain(t, newcomer)
	if typ != constants.ShipgateTypeSStatus {
		t.Fatalf("newcomer: type = %#x, want SSTATUS", typ)
	}
	replayed, err := DecodeSStatus(body)
	if err != nil {
		t.Fatalf("DecodeSStatus: %v", err)
	}
	if replayed.ShipID != existingEntry.ID {
		t.Fatalf("replayed ship_id = %d, want %d", replayed.ShipID, existingEntry.ID)
	}

	_, _, body = drain(t, existingEntry)
	announced, err := DecodeSStatus(body)
	if err != nil {
		t.Fatalf("DecodeSStatus: %v", err)
	}
	if announced.ShipID != newcomer.ID || announced.Status != StatusUp {
		t.Fatalf("announced = %+v, want ship_id=%d status=up", announced, newcomer.ID)
	}
}

func TestBroadcastDisconnectAnnouncesDownStatus(t *testing.T) {
	leaving := newShipEntry(1, "Alpha", 0, 0, 0)
	remaining := newShipEntry(2, "Beta", 0, 0, 0)

	broadcastDisconnect(leaving, []*ShipEntry{remaining})

	_, _, body := drain(t, remaining)
	info, err := DecodeSStatus(body)
	if err != nil {
		t.Fatalf("DecodeSStatus: %v", err)
	}
	if info.ShipID != leaving.ID || info.Status != StatusDown {
		t.Fatalf("got %+v, want ship_id=%d status=down", info, leaving.ID)
	}
}
