package ship

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sylverant/psoserv/internal/constants"
)

func TestIsBugReport(t *testing.T) {
	if !isBugReport(constants.BugReportGuildcard) {
		t.Fatal("expected the sentinel guildcard to be a bug report")
	}
	if isBugReport(12345) {
		t.Fatal("expected an ordinary guildcard to not be a bug report")
	}
}

func TestBugReportPath(t *testing.T) {
	when := time.Date(2026, 7, 30, 13, 5, 9, 250_000_000, time.UTC)
	got := bugReportPath("bugs", when, 555)
	want := filepath.Join("bugs", "2026.07.30.13.05.09.250-555")
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestWriteBugReportDC(t *testing.T) {
	dir := t.TempDir()
	when := time.Date(2026, 7, 30, 13, 5, 9, 0, time.UTC)

	if err := writeBugReport(dir, when, 42, "Player1", int(KindDCv1), []byte("it crashed\x00"), false); err != nil {
		t.Fatalf("writeBugReport: %v", err)
	}

	path := bugReportPath(dir, when, 42)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(data), "Player1") || !strings.Contains(string(data), "it crashed") {
		t.Fatalf("unexpected report contents: %q", data)
	}
}

func TestWriteBugReportPC(t *testing.T) {
	dir := t.TempDir()
	when := time.Date(2026, 7, 30, 13, 5, 9, 0, time.UTC)

	text := asciiToUTF16LE("crashed on pc", 20)
	if err := writeBugReport(dir, when, 99, "PCPlayer", int(KindPC), text, true); err != nil {
		t.Fatalf("writeBugReport: %v", err)
	}

	path := bugReportPath(dir, when, 99)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(data), "crashed on pc") {
		t.Fatalf("expected transcoded ascii text to round-trip, got %q", data)
	}
}

func TestDecodeUTF16LE(t *testing.T) {
	raw := asciiToUTF16LE("hi", 4)
	got := string(decodeUTF16LE(raw))
	if got != "hi" {
		t.Fatalf("got %q", got)
	}
}

func TestCutAtNUL(t *testing.T) {
	got := cutAtNUL([]byte("abc\x00def"))
	if string(got) != "abc" {
		t.Fatalf("got %q", got)
	}
}
