package login

import (
	"net"
	"testing"
)

func TestNewClientAssignsUniqueConnID(t *testing.T) {
	serverA, clientA := net.Pipe()
	defer serverA.Close()
	defer clientA.Close()
	serverB, clientB := net.Pipe()
	defer serverB.Close()
	defer clientB.Close()

	a, err := NewClient(serverA, KindDCv1)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	b, err := NewClient(serverB, KindDCv1)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if a.ConnID() == "" {
		t.Fatal("expected a non-empty ConnID")
	}
	if a.ConnID() == b.ConnID() {
		t.Fatalf("expected distinct connections to get distinct ConnIDs, got %q for both", a.ConnID())
	}
}
