package wire

import "testing"

func TestSendBufferAppendAdvance(t *testing.T) {
	b := NewSendBuffer(8)
	b.Append([]byte("hello"))
	if b.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", b.Len())
	}

	b.Advance(3)
	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 after advance", b.Len())
	}
	if string(b.Pending()) != "lo" {
		t.Fatalf("Pending() = %q, want %q", b.Pending(), "lo")
	}

	b.Advance(2)
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after full advance", b.Len())
	}
}

func TestSendBufferCompactsBeforeGrowing(t *testing.T) {
	b := NewSendBuffer(8)
	b.Append([]byte("1234"))
	b.Advance(4)
	b.Append([]byte("5678"))
	if b.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", b.Len())
	}
	if string(b.Pending()) != "5678" {
		t.Fatalf("Pending() = %q, want %q", b.Pending(), "5678")
	}
	if len(b.data) != 8 {
		t.Fatalf("backing array grew unexpectedly: len=%d", len(b.data))
	}
}

func TestSendBufferGrowsWhenNeeded(t *testing.T) {
	b := NewSendBuffer(4)
	b.Append([]byte("abcd"))
	b.Append([]byte("efgh"))
	if b.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", b.Len())
	}
	if string(b.Pending()) != "abcdefgh" {
		t.Fatalf("Pending() = %q, want %q", b.Pending(), "abcdefgh")
	}
}

func TestSendBufferInvariant(t *testing.T) {
	b := NewSendBuffer(16)
	b.Append([]byte("xyz"))
	b.Advance(1)
	if !(0 <= b.start && b.start <= b.cur && b.cur <= len(b.data)) {
		t.Fatalf("invariant violated: start=%d cur=%d len=%d", b.start, b.cur, len(b.data))
	}
}
