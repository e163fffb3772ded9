package store

import (
	"context"
	"errors"

	"github.com/JimmysRanch/126-sub001/internal/domain"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidDataset = errors.New("invalid dataset")
	ErrInvalidUser    = errors.New("invalid user")
)

// Repository is the persistence collaborator of the reporting core. It
// stores raw records as supplied; normalization happens on every read.
type Repository interface {
	LoadDataset(ctx context.Context, businessID string) (domain.RawDataset, string, error)
	DatasetVersion(ctx context.Context, businessID string) (string, error)
	ReplaceDataset(ctx context.Context, businessID string, raw domain.RawDataset, record domain.DatasetImport) error
	ListImports(ctx context.Context, businessID string, limit int) ([]domain.DatasetImport, error)
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}

// Counts summarizes a raw dataset for import records.
func Counts(raw domain.RawDataset) domain.DatasetCounts {
	return domain.DatasetCounts{
		Appointments: len(raw.Appointments),
		Transactions: len(raw.Transactions),
		Clients:      len(raw.Clients),
		Staff:        len(raw.Staff),
		Inventory:    len(raw.Inventory),
		Messages:     len(raw.Messages),
	}
}
