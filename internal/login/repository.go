package login

import (
	"context"

	"github.com/sylverant/psoserv/internal/model"
)

// ClientRepository is the subset of *db.DB the login handlers need —
// exposed as an interface for dependency injection in tests, the same
// shape as the teacher's AccountRepository in internal/login/repository.go.
type ClientRepository interface {
	GetDCClient(ctx context.Context, dcID, serial, accessKey string, v1 bool) (*model.DCClient, error)
	CreateDCClient(ctx context.Context, dcID, serial, accessKey string, v1 bool) (*model.DCClient, error)
	MigratePCLegacyClient(ctx context.Context, rowAccessKey, newSerial string) error

	GetGCClient(ctx context.Context, serial, accessKey string) (*model.GCClient, error)
	CreateGCClient(ctx context.Context, serial, accessKey string) (*model.GCClient, error)
	GetGCPasswordCheck(ctx context.Context, accountID int64) (hash string, regTime int64, err error)
}
