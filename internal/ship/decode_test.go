package ship

import (
	"encoding/binary"
	"testing"

	"github.com/sylverant/psoserv/internal/constants"
)

func padCString(s string, width int) []byte {
	b := make([]byte, width)
	copy(b, s)
	return b
}

func TestDecodeShipLogin(t *testing.T) {
	body := append([]byte{3}, padCString("DC01", dcIDFieldLen)...)
	body = append(body, padCString("12345678", dcSerialFieldLen)...)
	body = append(body, padCString("ABCDEFGH", dcAccessFieldLen)...)

	lang, dcID, serial, access, err := decodeShipLogin(body)
	if err != nil {
		t.Fatalf("decodeShipLogin: %v", err)
	}
	if lang != 3 || dcID != "DC01" || serial != "12345678" || access != "ABCDEFGH" {
		t.Fatalf("got lang=%d dcID=%q serial=%q access=%q", lang, dcID, serial, access)
	}
}

func TestDecodeShipLoginTooShort(t *testing.T) {
	if _, _, _, _, err := decodeShipLogin(make([]byte, 4)); err == nil {
		t.Fatal("expected error for short body")
	}
}

func TestDecodeMenuSelect(t *testing.T) {
	body := make([]byte, menuSelectBodyLen)
	binary.LittleEndian.PutUint32(body[0:], constants.MenuIDQuestCategories)
	binary.LittleEndian.PutUint32(body[4:], 7)

	menuID, itemID, err := decodeMenuSelect(body)
	if err != nil {
		t.Fatalf("decodeMenuSelect: %v", err)
	}
	if menuID != constants.MenuIDQuestCategories || itemID != 7 {
		t.Fatalf("got menuID=%#x itemID=%d", menuID, itemID)
	}
}

func TestDecodeMenuSelectTooShort(t *testing.T) {
	if _, _, err := decodeMenuSelect(make([]byte, 4)); err == nil {
		t.Fatal("expected error for short body")
	}
}

func buildDCSimpleMail(senderGC, destGC uint32, senderName string, text string) []byte {
	body := make([]byte, dcSimpleMailBodyLen)
	binary.LittleEndian.PutUint32(body[4:], senderGC)
	copy(body[8:8+constants.DCSimpleMailNameSize], senderName)
	binary.LittleEndian.PutUint32(body[8+constants.DCSimpleMailNameSize:], destGC)
	copy(body[12+constants.DCSimpleMailNameSize:], text)
	return body
}

func TestDecodeDCSimpleMail(t *testing.T) {
	body := buildDCSimpleMail(100, 0, "Player1", "hello")

	sender, dest, name, text, err := decodeDCSimpleMail(body)
	if err != nil {
		t.Fatalf("decodeDCSimpleMail: %v", err)
	}
	if sender != 100 || dest != 0 || name != "Player1" {
		t.Fatalf("got sender=%d dest=%d name=%q", sender, dest, name)
	}
	if string(text[:5]) != "hello" {
		t.Fatalf("got text=%q", text[:5])
	}
}

func TestDecodeDCSimpleMailTooShort(t *testing.T) {
	if _, _, _, _, err := decodeDCSimpleMail(make([]byte, 4)); err == nil {
		t.Fatal("expected error for short body")
	}
}

func buildPCSimpleMail(senderGC, destGC uint32, text string) []byte {
	body := make([]byte, pcSimpleMailBodyLen)
	binary.LittleEndian.PutUint32(body[4:], senderGC)
	destOff := 8 + constants.PCSimpleMailNameSize*2
	binary.LittleEndian.PutUint32(body[destOff:], destGC)
	copy(body[destOff+4:], text)
	return body
}

func TestDecodePCSimpleMail(t *testing.T) {
	body := buildPCSimpleMail(42, constants.BugReportGuildcard, "report body")

	sender, dest, text, err := decodePCSimpleMail(body)
	if err != nil {
		t.Fatalf("decodePCSimpleMail: %v", err)
	}
	if sender != 42 || dest != constants.BugReportGuildcard {
		t.Fatalf("got sender=%d dest=%d", sender, dest)
	}
	if string(text[:11]) != "report body" {
		t.Fatalf("got text=%q", text[:11])
	}
}

func TestDecodePCSimpleMailTooShort(t *testing.T) {
	if _, _, _, err := decodePCSimpleMail(make([]byte, 4)); err == nil {
		t.Fatal("expected error for short body")
	}
}
