package engagement

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/habitforge/habitforge/internal/domain"
	"github.com/habitforge/habitforge/internal/infra/sqlite"
)

// UserService creates users and reads their progress.
type UserService struct {
	db    *sqlite.DB
	clock Clock
}

// NewUserService creates a user service.
func NewUserService(db *sqlite.DB, clock Clock) *UserService {
	return &UserService{db: db, clock: clock}
}

// Create stores a level 1 user with empty counters.
func (s *UserService) Create(ctx context.Context, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("name", "is required")
	}
	u := domain.NewUser(uuid.NewString(), name, s.clock())
	if err := s.db.Update(ctx, func(tx *sqlite.Tx) error { return tx.CreateUser(u) }); err != nil {
		return nil, err
	}
	return &u, nil
}

// Get returns a user.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	var out *domain.User
	err := s.db.View(ctx, func(tx *sqlite.Tx) error {
		var err error
		out, err = tx.GetUser(userID)
		return err
	})
	return out, err
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := s.db.View(ctx, func(tx *sqlite.Tx) error {
		var err error
		out, err = tx.ListUsers()
		return err
	})
	return out, err
}
