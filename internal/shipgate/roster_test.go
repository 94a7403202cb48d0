package shipgate

import "testing"

func TestRosterRegisterGetUnregister(t *testing.T) {
	r := NewRoster()
	e := newShipEntry(1, "Ragol", 0x0A000001, 0x0A000002, 5100)

	if err := r.Register(e); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := r.Get(1); got != e {
		t.Fatalf("Get(1) = %v, want %v", got, e)
	}
	if r.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", r.Count())
	}

	r.Unregister(1)
	if got := r.Get(1); got != nil {
		t.Fatalf("Get(1) after Unregister = %v, want nil", got)
	}
}

func TestRosterRejectsDuplicateShipID(t *testing.T) {
	r := NewRoster()
	e1 := newShipEntry(7, "Pioneer2", 0, 0, 0)
	e2 := newShipEntry(7, "Pioneer2Alt", 0, 0, 0)

	if err := r.Register(e1); err != nil {
		t.Fatalf("Register(e1): %v", err)
	}
	if err := r.Register(e2); err == nil {
		t.Fatal("expected error registering duplicate ship_id")
	}
}

func TestRosterAllReturnsSnapshot(t *testing.T) {
	r := NewRoster()
	r.Register(newShipEntry(1, "A", 0, 0, 0))
	r.Register(newShipEntry(2, "B", 0, 0, 0))

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("All() returned %d entries, want 2", len(all))
	}
}

func TestRosterAllPreservesRegistrationOrder(t *testing.T) {
	r := NewRoster()
	for _, id := range []uint32{3, 1, 4} {
		if err := r.Register(newShipEntry(id, "", 0, 0, 0)); err != nil {
			t.Fatalf("Register(%d): %v", id, err)
		}
	}

	got := r.All()
	wantIDs := []uint32{3, 1, 4}
	if len(got) != len(wantIDs) {
		t.Fatalf("All() returned %d entries, want %d", len(got), len(wantIDs))
	}
	for i, e := range got {
		if e.ID != wantIDs[i] {
			t.Fatalf("All()[%d].ID = %d, want %d", i, e.ID, wantIDs[i])
		}
	}

	r.Unregister(1)
	r.Register(newShipEntry(1, "", 0, 0, 0))
	got = r.All()
	wantIDs = []uint32{3, 4, 1}
	for i, e := range got {
		if e.ID != wantIDs[i] {
			t.Fatalf("after re-register, All()[%d].ID = %d, want %d", i, e.ID, wantIDs[i])
		}
	}
}
