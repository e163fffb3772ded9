package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/JimmysRanch/126-sub001/internal/domain"
	"github.com/JimmysRanch/126-sub001/internal/store"
)

type dataset struct {
	raw     domain.RawDataset
	version string
}

type Store struct {
	mu              sync.RWMutex
	datasets        map[string]dataset
	imports         map[string][]domain.DatasetImport
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_OWNER_PASSWORD and SEED_MANAGER_PASSWORD.
// If unset, dev defaults are used with a warning. The server uses
// PostgreSQL whenever DATABASE_URL is set.
func seedUsers() map[string]domain.UserAccount {
	ownerPwd := envOr("SEED_OWNER_PASSWORD", "owner123")
	managerPwd := envOr("SEED_MANAGER_PASSWORD", "manager123")
	if os.Getenv("SEED_OWNER_PASSWORD") == "" || os.Getenv("SEED_MANAGER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_OWNER_PASSWORD and SEED_MANAGER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"owner", ownerPwd, domain.RoleOwner},
		{"manager", managerPwd, domain.RoleManager},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// New returns an empty store with the seed users.
func New() *Store {
	return &Store{
		datasets:        make(map[string]dataset),
		imports:         make(map[string][]domain.DatasetImport),
		usersByUsername: seedUsers(),
	}
}

// NewSeeded returns a store holding a demo salon dataset for businessID
// whose last visit falls on today.
func NewSeeded(businessID string, today time.Time) *Store {
	s := New()
	raw := SeedDataset(today)
	s.datasets[businessID] = dataset{raw: raw, version: "seed-" + today.UTC().Format("20060102")}
	return s
}

func (s *Store) LoadDataset(_ context.Context, businessID string) (domain.RawDataset, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[businessID]
	if !ok {
		return domain.RawDataset{}, "", store.ErrNotFound
	}
	return cloneRaw(ds.raw), ds.version, nil
}

func (s *Store) DatasetVersion(_ context.Context, businessID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[businessID]
	if !ok {
		return "", store.ErrNotFound
	}
	return ds.version, nil
}

func (s *Store) ReplaceDataset(_ context.Context, businessID string, raw domain.RawDataset, record domain.DatasetImport) error {
	if strings.TrimSpace(businessID) == "" || strings.TrimSpace(record.Version) == "" {
		return store.ErrInvalidDataset
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.datasets[businessID] = dataset{raw: cloneRaw(raw), version: record.Version}
	record.BusinessID = businessID
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	s.imports[businessID] = append(s.imports[businessID], record)
	return nil
}

func (s *Store) ListImports(_ context.Context, businessID string, limit int) ([]domain.DatasetImport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.imports[businessID]
	out := make([]domain.DatasetImport, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidUser
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrInvalidUser
	}
	user.Username = username
	if user.Role == "" {
		user.Role = domain.RoleManager
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Active = true
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidUser
	}
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

// cloneRaw copies the top-level collections so callers cannot append into
// the stored snapshot.
func cloneRaw(src domain.RawDataset) domain.RawDataset {
	return domain.RawDataset{
		Appointments: slices.Clone(src.Appointments),
		Transactions: slices.Clone(src.Transactions),
		Clients:      slices.Clone(src.Clients),
		Staff:        slices.Clone(src.Staff),
		Inventory:    slices.Clone(src.Inventory),
		Messages:     slices.Clone(src.Messages),
	}
}
