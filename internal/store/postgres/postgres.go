package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JimmysRanch/126-sub001/internal/domain"
	"github.com/JimmysRanch/126-sub001/internal/store"
)

//go:embed schema.sql
var schema string

const (
	kindAppointment = "appointment"
	kindTransaction = "transaction"
	kindClient      = "client"
	kindStaff       = "staff"
	kindInventory   = "inventory"
	kindMessage     = "message"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies the idempotent schema.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Store) DatasetVersion(ctx context.Context, businessID string) (string, error) {
	var version string
	err := s.db.QueryRowContext(ctx, `
		SELECT version FROM report_datasets WHERE business_id = $1
	`, businessID).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return version, nil
}

func (s *Store) LoadDataset(ctx context.Context, businessID string) (domain.RawDataset, string, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return domain.RawDataset{}, "", err
	}
	defer func() { _ = tx.Rollback() }()

	var version string
	err = tx.QueryRowContext(ctx, `
		SELECT version FROM report_datasets WHERE business_id = $1
	`, businessID).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RawDataset{}, "", store.ErrNotFound
	}
	if err != nil {
		return domain.RawDataset{}, "", err
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT kind, payload
		FROM report_records
		WHERE business_id = $1
		ORDER BY kind, position
	`, businessID)
	if err != nil {
		return domain.RawDataset{}, "", err
	}
	defer rows.Close()

	var raw domain.RawDataset
	for rows.Next() {
		var kind string
		var payload []byte
		if err := rows.Scan(&kind, &payload); err != nil {
			return domain.RawDataset{}, "", err
		}
		if err := appendRecord(&raw, kind, payload); err != nil {
			return domain.RawDataset{}, "", err
		}
	}
	if err := rows.Err(); err != nil {
		return domain.RawDataset{}, "", err
	}
	return raw, version, nil
}

func appendRecord(raw *domain.RawDataset, kind string, payload []byte) error {
	var err error
	switch kind {
	case kindAppointment:
		var rec domain.RawAppointment
		if err = json.Unmarshal(payload, &rec); err == nil {
			raw.Appointments = append(raw.Appointments, rec)
		}
	case kindTransaction:
		var rec domain.RawTransaction
		if err = json.Unmarshal(payload, &rec); err == nil {
			raw.Transactions = append(raw.Transactions, rec)
		}
	case kindClient:
		var rec domain.RawClient
		if err = json.Unmarshal(payload, &rec); err == nil {
			raw.Clients = append(raw.Clients, rec)
		}
	case kindStaff:
		var rec domain.RawStaff
		if err = json.Unmarshal(payload, &rec); err == nil {
			raw.Staff = append(raw.Staff, rec)
		}
	case kindInventory:
		var rec domain.RawInventoryItem
		if err = json.Unmarshal(payload, &rec); err == nil {
			raw.Inventory = append(raw.Inventory, rec)
		}
	case kindMessage:
		var rec domain.RawMessage
		if err = json.Unmarshal(payload, &rec); err == nil {
			raw.Messages = append(raw.Messages, rec)
		}
	default:
		return fmt.Errorf("unknown record kind %q", kind)
	}
	if err != nil {
		return fmt.Errorf("decode %s record: %w", kind, err)
	}
	return nil
}

// records flattens raw into (kind, payload) pairs in collection order.
func records(raw domain.RawDataset) ([]string, [][]byte, error) {
	kinds := make([]string, 0)
	payloads := make([][]byte, 0)
	add := func(kind string, value any) error {
		payload, err := json.Marshal(value)
		if err != nil {
			return err
		}
		kinds = append(kinds, kind)
		payloads = append(payloads, payload)
		return nil
	}

	for _, rec := range raw.Appointments {
		if err := add(kindAppointment, rec); err != nil {
			return nil, nil, err
		}
	}
	for _, rec := range raw.Transactions {
		if err := add(kindTransaction, rec); err != nil {
			return nil, nil, err
		}
	}
	for _, rec := range raw.Clients {
		if err := add(kindClient, rec); err != nil {
			return nil, nil, err
		}
	}
	for _, rec := range raw.Staff {
		if err := add(kindStaff, rec); err != nil {
			return nil, nil, err
		}
	}
	for _, rec := range raw.Inventory {
		if err := add(kindInventory, rec); err != nil {
			return nil, nil, err
		}
	}
	for _, rec := range raw.Messages {
		if err := add(kindMessage, rec); err != nil {
			return nil, nil, err
		}
	}
	return kinds, payloads, nil
}

func (s *Store) ReplaceDataset(ctx context.Context, businessID string, raw domain.RawDataset, record domain.DatasetImport) error {
	if strings.TrimSpace(businessID) == "" || strings.TrimSpace(record.Version) == "" || strings.TrimSpace(record.ID) == "" {
		return store.ErrInvalidDataset
	}
	kinds, payloads, err := records(raw)
	if err != nil {
		return err
	}
	counts, err := json.Marshal(store.Counts(raw))
	if err != nil {
		return err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO report_datasets (business_id, version, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (business_id)
		DO UPDATE SET version = EXCLUDED.version, updated_at = now()
	`, businessID, record.Version); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM report_records WHERE business_id = $1`, businessID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO report_records (business_id, kind, position, payload)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	positions := make(map[string]int, 6)
	for i, kind := range kinds {
		if _, err := stmt.ExecContext(ctx, businessID, kind, positions[kind], payloads[i]); err != nil {
			return err
		}
		positions[kind]++
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO dataset_imports (id, business_id, version, imported_by, counts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, record.ID, businessID, record.Version, record.ImportedBy, counts, record.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidDataset
		}
		return err
	}

	return tx.Commit()
}

func (s *Store) ListImports(ctx context.Context, businessID string, limit int) ([]domain.DatasetImport, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, business_id, version, imported_by, counts, created_at
		FROM dataset_imports
		WHERE business_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, businessID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	imports := make([]domain.DatasetImport, 0, limit)
	for rows.Next() {
		var rec domain.DatasetImport
		var counts []byte
		if err := rows.Scan(&rec.ID, &rec.BusinessID, &rec.Version, &rec.ImportedBy, &counts, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(counts, &rec.Counts); err != nil {
			return nil, err
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		imports = append(imports, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return imports, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidUser
	}
	if user.Role == "" {
		user.Role = domain.RoleManager
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, password, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidUser
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidUser
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
