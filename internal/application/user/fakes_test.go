package user_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	app "github.com/mohammadpnp/user-pipeline/internal/application/user"
	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/dedup"
	"github.com/mohammadpnp/user-pipeline/internal/logging"
)

// fakeUserStore enforces email uniqueness like the real table does.
type fakeUserStore struct {
	mu      sync.Mutex
	byEmail map[string]domain.User
	order   []string

	failAfter int // Create fails once this many users were created; 0 disables.
	createErr error
	listErr   error
	deleteErr error
}

func newFakeUserStore(existing ...domain.User) *fakeUserStore {
	s := &fakeUserStore{byEmail: map[string]domain.User{}}
	for _, u := range existing {
		if _, err := s.Create(context.Background(), u); err != nil {
			panic(err)
		}
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return domain.User{}, s.createErr
	}
	if s.failAfter > 0 && len(s.order) >= s.failAfter {
		return domain.User{}, errors.New("connection refused")
	}
	u.Email = domain.NormalizeEmail(u.Email)
	if _, ok := s.byEmail[u.Email]; ok {
		return domain.User{}, domain.ErrDuplicateEmail
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.byEmail[u.Email] = u
	s.order = append(s.order, u.Email)
	return u, nil
}

func (s *fakeUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byEmail[domain.NormalizeEmail(email)]
	return ok, nil
}

func (s *fakeUserStore) List(_ context.Context, limit int) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]domain.User, 0, len(s.order))
	for _, email := range s.order {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, s.byEmail[email])
	}
	return out, nil
}

func (s *fakeUserStore) Search(ctx context.Context, term string) ([]domain.User, error) {
	all, err := s.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(term)
	var out []domain.User
	for _, u := range all {
		if strings.Contains(strings.ToLower(u.Name), term) || strings.Contains(u.Email, term) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byEmail {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *fakeUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i, email := range s.order {
		if s.byEmail[email].ID == id {
			delete(s.byEmail, email)
			s.order = append(s.order[:i], s.order[i+1:]...)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (s *fakeUserStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

type fakeSourceReader struct {
	rows []domain.SourceRow
	err  error
}

func (f *fakeSourceReader) Read(r io.Reader) ([]domain.SourceRow, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func newWriter(store *fakeUserStore) *app.RecordWriter {
	return app.NewRecordWriter(domain.DefaultValidator(), dedup.NewMemoryIndex(store), store, logging.Nop())
}

func newImporter(store *fakeUserStore, rows []domain.SourceRow, workers int) app.ImportUsersFromSpreadsheet {
	return app.NewImportUsersFromSpreadsheet(
		&fakeSourceReader{rows: rows},
		newWriter(store),
		nil,
		logging.Nop(),
		app.ImportConfig{Workers: workers},
	)
}

func record(name, email, phone string) domain.RawRecord {
	return domain.RawRecord{
		domain.FieldName:  name,
		domain.FieldEmail: email,
		domain.FieldPhone: phone,
	}
}

func numbered(records ...domain.RawRecord) []domain.SourceRow {
	rows := make([]domain.SourceRow, 0, len(records))
	for i, r := range records {
		rows = append(rows, domain.SourceRow{Number: int64(i + 2), Record: r})
	}
	return rows
}
