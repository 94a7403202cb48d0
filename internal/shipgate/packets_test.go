package shipgate

import (
	"bytes"
	"testing"
)

func TestSStatusRoundTrip(t *testing.T) {
	info := ShipStatusInfo{
		Name:    "Ragol",
		ShipID:  3,
		Addr:    0x0A000001,
		IntAddr: 0x0A000002,
		Port:    5100,
		Status:  StatusUp,
	}
	got, err := DecodeSStatus(EncodeSStatus(info))
	if err != nil {
		t.Fatalf("DecodeSStatus: %v", err)
	}
	if got != info {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, info)
	}
}

func TestForwardRoundTrip(t *testing.T) {
	client := []byte("fake dc packet bytes")
	body := EncodeForward(1, 2, client)

	sender, dest, got, err := DecodeForward(body)
	if err != nil {
		t.Fatalf("DecodeForward: %v", err)
	}
	if sender != 1 || dest != 2 {
		t.Fatalf("sender=%d dest=%d, want 1,2", sender, dest)
	}
	if !bytes.Equal(got, client) {
		t.Fatalf("client packet = %q, want %q", got, client)
	}
}

func TestCountRoundTrip(t *testing.T) {
	got, err := DecodeCount(EncodeCount(42))
	if err != nil {
		t.Fatalf("DecodeCount: %v", err)
	}
	if got != 42 {
		t.Fatalf("count = %d, want 42", got)
	}
}

func TestCReqRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 1052)
	body := EncodeCReq(99, 2, data)

	gc, slot, got, err := DecodeCReq(body)
	if err != nil {
		t.Fatalf("DecodeCReq: %v", err)
	}
	if gc != 99 || slot != 2 {
		t.Fatalf("gc=%d slot=%d, want 99,2", gc, slot)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("character data mismatch")
	}
}

func TestGMLoginRoundTrip(t *testing.T) {
	info := GMLoginInfo{Guildcard: 1234, Block: 3, Privilege: 2}
	got, err := DecodeGMLogin(EncodeGMLogin(info))
	if err != nil {
		t.Fatalf("DecodeGMLogin: %v", err)
	}
	if got != info {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, info)
	}
}

func TestErrorRoundTrip(t *testing.T) {
	typ, reason, err := DecodeError(EncodeError(0x19, "bad request"))
	if err != nil {
		t.Fatalf("DecodeError: %v", err)
	}
	if typ != 0x19 || reason != "bad request" {
		t.Fatalf("typ=%#x reason=%q", typ, reason)
	}
}
