package login

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/sylverant/psoserv/internal/constants"
	"github.com/sylverant/psoserv/internal/db"
	"github.com/sylverant/psoserv/internal/model"
)

type gcPasswordRecord struct {
	hash    string
	regTime int64
}

type fakeRepo struct {
	dc            map[string]*model.DCClient // keyed by dcID+"/"+serial+"/"+access
	gc            map[string]*model.GCClient  // keyed by serial+"/"+access
	gcPasswords   map[int64]gcPasswordRecord
	nextGuildcard uint32
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		dc:            make(map[string]*model.DCClient),
		gc:            make(map[string]*model.GCClient),
		gcPasswords:   make(map[int64]gcPasswordRecord),
		nextGuildcard: 1000,
	}
}

func dcKey(dcID, serial, access string) string { return dcID + "/" + serial + "/" + access }
func gcKey(serial, access string) string       { return serial + "/" + access }

func (f *fakeRepo) GetDCClient(ctx context.Context, dcID, serial, accessKey string, v1 bool) (*model.DCClient, error) {
	key := dcKey(dcID, serial, accessKey)
	if !v1 {
		key = dcKey("", serial, accessKey)
	}
	return f.dc[key], nil
}

func (f *fakeRepo) CreateDCClient(ctx context.Context, dcID, serial, accessKey string, v1 bool) (*model.DCClient, error) {
	f.nextGuildcard++
	key := dcKey(dcID, serial, accessKey)
	if !v1 {
		key = dcKey("", serial, accessKey)
	}
	c := &model.DCClient{DCID: dcID, SerialNumber: serial, AccessKey: accessKey, Guildcard: f.nextGuildcard, IsV1: v1}
	f.dc[key] = c
	return c, nil
}

func (f *fakeRepo) MigratePCLegacyClient(ctx context.Context, rowAccessKey, newSerial string) error {
	legacy, ok := f.dc[dcKey("", "0", rowAccessKey)]
	if !ok {
		return nil
	}
	delete(f.dc, dcKey("", "0", rowAccessKey))
	legacy.SerialNumber = newSerial
	f.dc[dcKey("", newSerial, rowAccessKey)] = legacy
	return nil
}

func (f *fakeRepo) GetGCClient(ctx context.Context, serial, accessKey string) (*model.GCClient, error) {
	return f.gc[gcKey(serial, accessKey)], nil
}

func (f *fakeRepo) CreateGCClient(ctx context.Context, serial, accessKey string) (*model.GCClient, error) {
	f.nextGuildcard++
	c := &model.GCClient{Guildcard: f.nextGuildcard}
	f.gc[gcKey(serial, accessKey)] = c
	return c, nil
}

func (f *fakeRepo) GetGCPasswordCheck(ctx context.Context, accountID int64) (string, int64, error) {
	p := f.gcPasswords[accountID]
	return p.hash, p.regTime, nil
}

func pipeClient(t *testing.T, kind Kind) *Client {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { server.Close(); client.Close() })
	c, err := NewClient(server, kind)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestHandleDCv1LoginCreatesClient(t *testing.T) {
	repo := newFakeRepo()
	h := NewHandler(repo, NewShipgateClient("127.0.0.1", 0, "secret"), NewThrottle(5, time.Minute))
	c := pipeClient(t, KindDCv1)

	body := append([]byte{0}, padCString("DC01", dcIDFieldLen)...)
	body = append(body, padCString("11112222", dcSerialFieldLen)...)
	body = append(body, padCString("AAAABBBB", dcAccessFieldLen)...)

	reply, replyType, keepOpen, err := h.Handle(context.Background(), c, constants.LoginTypeClientLogin, body)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !keepOpen {
		t.Fatal("expected connection to stay open")
	}
	if replyType != constants.LoginTypeDCSecurity {
		t.Fatalf("replyType = %#x, want %#x", replyType, constants.LoginTypeDCSecurity)
	}
	if len(reply) != dcSecurityBodyLen {
		t.Fatalf("reply len = %d, want %d", len(reply), dcSecurityBodyLen)
	}
	if c.State() != StateAuthenticated {
		t.Fatalf("state = %v, want Authenticated", c.State())
	}
	if c.Guildcard() == 0 {
		t.Fatal("expected guildcard to be assigned")
	}
}

func TestHandleDCv1LoginReusesExistingGuildcard(t *testing.T) {
	repo := newFakeRepo()
	existing, _ := repo.CreateDCClient(context.Background(), "DC01", "11112222", "AAAABBBB", true)
	h := NewHandler(repo, NewShipgateClient("127.0.0.1", 0, "secret"), NewThrottle(5, time.Minute))
	c := pipeClient(t, KindDCv1)

	body := append([]byte{0}, padCString("DC01", dcIDFieldLen)...)
	body = append(body, padCString("11112222", dcSerialFieldLen)...)
	body = append(body, padCString("AAAABBBB", dcAccessFieldLen)...)

	_, _, _, err := h.Handle(context.Background(), c, constants.LoginTypeClientLogin, body)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if c.Guildcard() != existing.Guildcard {
		t.Fatalf("guildcard = %d, want reused %d", c.Guildcard(), existing.Guildcard)
	}
}

func TestHandleDCv2PCLoginUnregisteredPCDisconnects(t *testing.T) {
	repo := newFakeRepo()
	h := NewHandler(repo, NewShipgateClient("127.0.0.1", 0, "secret"), NewThrottle(5, time.Minute))
	c := pipeClient(t, KindPC)

	body := append([]byte{}, padCString("", dcIDFieldLen)...)
	body = append(body, padCString("99998888", dcSerialFieldLen)...)
	body = append(body, padCString("CCCCDDDD", dcAccessFieldLen)...)

	reply, _, keepOpen, err := h.Handle(context.Background(), c, constants.LoginTypeDCv2LoginA, body)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if keepOpen {
		t.Fatal("expected unregistered pc client to be disconnected")
	}
	if reply != nil {
		t.Fatal("expected no reply for disconnect path")
	}
}

func TestHandleGCLoginCRejectsWrongPassword(t *testing.T) {
	repo := newFakeRepo()
	accountID := int64(7)
	gc, _ := repo.CreateGCClient(context.Background(), "11112222", "AAAABBBB")
	gc.AccountID = &accountID
	repo.gcPasswords[accountID] = gcPasswordRecord{hash: db.GCPasswordHash("correct", 555), regTime: 555}

	h := NewHandler(repo, NewShipgateClient("127.0.0.1", 0, "secret"), NewThrottle(5, time.Minute))
	c := pipeClient(t, KindGC)

	body := append([]byte{}, padCString("11112222", gcSerialFieldLen)...)
	body = append(body, padCString("AAAABBBB", gcAccessFieldLen)...)
	body = append(body, padCString("wrong", gcPasswordFieldLen)...)

	reply, _, keepOpen, err := h.Handle(context.Background(), c, constants.LoginTypeGCLoginC, body)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if keepOpen || reply != nil {
		t.Fatal("expected disconnect on wrong password")
	}
	if c.State() == StateAuthenticated {
		t.Fatal("did not expect authentication to succeed")
	}
}

func TestHandleGCLoginCAcceptsCorrectPassword(t *testing.T) {
	repo := newFakeRepo()
	accountID := int64(7)
	gc, _ := repo.CreateGCClient(context.Background(), "11112222", "AAAABBBB")
	gc.AccountID = &accountID
	repo.gcPasswords[accountID] = gcPasswordRecord{hash: db.GCPasswordHash("correct", 555), regTime: 555}

	h := NewHandler(repo, NewShipgateClient("127.0.0.1", 0, "secret"), NewThrottle(5, time.Minute))
	c := pipeClient(t, KindGC)

	body := append([]byte{}, padCString("11112222", gcSerialFieldLen)...)
	body = append(body, padCString("AAAABBBB", gcAccessFieldLen)...)
	body = append(body, padCString("correct", gcPasswordFieldLen)...)

	_, replyType, keepOpen, err := h.Handle(context.Background(), c, constants.LoginTypeGCLoginC, body)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !keepOpen {
		t.Fatal("expected connection to stay open after successful login")
	}
	if replyType != constants.LoginTypeGCLoginC {
		t.Fatalf("replyType = %#x, want %#x", replyType, constants.LoginTypeGCLoginC)
	}
	if c.State() != StateAuthenticated {
		t.Fatal("expected client to be authenticated")
	}
}

func TestThrottleBlocksRepeatedFailures(t *testing.T) {
	repo := newFakeRepo()
	th := NewThrottle(2, time.Minute)
	h := NewHandler(repo, NewShipgateClient("127.0.0.1", 0, "secret"), th)
	c := pipeClient(t, KindGC)

	body := append([]byte{}, padCString("11112222", gcSerialFieldLen)...)
	body = append(body, padCString("AAAABBBB", gcAccessFieldLen)...)
	body = append(body, padCString("wrong", gcPasswordFieldLen)...)

	for i := 0; i < 2; i++ {
		if _, _, _, err := h.Handle(context.Background(), c, constants.LoginTypeGCLoginC, body); err != nil {
			t.Fatalf("Handle: %v", err)
		}
	}
	if th.Allowed(c.IP()) {
		t.Fatal("expected ip to be throttled after repeated failures")
	}
}
