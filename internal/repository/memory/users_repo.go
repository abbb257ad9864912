package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/repository"
)

// Store keeps users and work orders in process memory. It enforces the same constraints as
// the Postgres schema: unique emails and technician references that must resolve.
type Store struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	workOrders map[string]storedWorkOrder
	now        func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]domain.User),
		workOrders: make(map[string]storedWorkOrder),
		now:        time.Now,
	}
}

// Users exposes the store as a repository.UserRepository.
func (s *Store) Users() repository.UserRepository {
	return usersRepo{s}
}

type usersRepo struct {
	s *Store
}

var _ repository.UserRepository = usersRepo{}

func (r usersRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.emailTakenLocked(user.Email, "") {
		return repository.ErrDuplicateEmail
	}
	now := r.s.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = cloneUser(*user)
	return nil
}

func (r usersRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	if r.s.emailTakenLocked(user.Email, user.ID) {
		return repository.ErrDuplicateEmail
	}
	user.UpdatedAt = r.s.now()
	r.s.users[user.ID] = cloneUser(*user)
	return nil
}

func (r usersRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneUser(user)
	return &out, nil
}

func (r usersRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if user.Email == email {
			out := cloneUser(user)
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r usersRepo) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.User, 0, len(r.s.users))
	for _, user := range r.s.users {
		result = append(result, cloneUser(user))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r usersRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return pgx.ErrNoRows
	}
	for _, wo := range r.s.workOrders {
		if wo.technicianID == id {
			return repository.ErrUserInUse
		}
	}
	delete(r.s.users, id)
	return nil
}

func (s *Store) emailTakenLocked(email, exceptID string) bool {
	for id, user := range s.users {
		if id != exceptID && user.Email == email {
			return true
		}
	}
	return false
}

func cloneUser(u domain.User) domain.User {
	if u.PhoneNumber != nil {
		phone := *u.PhoneNumber
		u.PhoneNumber = &phone
	}
	return u
}
