package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/atlas-erp/atlas/internal/rbac"
	"github.com/atlas-erp/atlas/internal/shared"
)

type memoryUserRepo struct {
	users  map[int64]*User
	nextID int64
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[int64]*User)}
}

func (r *memoryUserRepo) Get(ctx context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryUserRepo) List(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memoryUserRepo) Create(ctx context.Context, user User) (int64, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return 0, shared.ErrDuplicate
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = &user
	return user.ID, nil
}

func (r *memoryUserRepo) Update(ctx context.Context, user User) error {
	if _, ok := r.users[user.ID]; !ok {
		return shared.ErrNotFound
	}
	r.users[user.ID] = &user
	return nil
}

func TestCreateUserHashesPassword(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryUserRepo())

	user, err := svc.Create(ctx, CreateUserRequest{
		Email:    "ops@example.com",
		Name:     "Ops",
		Role:     "supervisor",
		Password: "correct horse",
	}, 1)
	require.NoError(t, err)
	require.Equal(t, rbac.RoleSupervisor, user.Role)
	require.True(t, user.IsActive)
	require.NotEqual(t, "correct horse", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")))
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryUserRepo())

	_, err := svc.Create(ctx, CreateUserRequest{
		Email:    "x@example.com",
		Name:     "X",
		Role:     "manager",
		Password: "long enough",
	}, 1)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryUserRepo())

	_, err := svc.Create(ctx, CreateUserRequest{Email: "dup@example.com", Name: "A", Role: "user", Password: "password1"}, 1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateUserRequest{Email: "dup@example.com", Name: "B", Role: "user", Password: "password2"}, 1)
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestUpdateUserPartial(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryUserRepo())

	created, err := svc.Create(ctx, CreateUserRequest{Email: "u@example.com", Name: "Before", Role: "user", Password: "password1"}, 1)
	require.NoError(t, err)

	name := "After"
	role := "admin"
	inactive := false
	updated, err := svc.Update(ctx, created.ID, UpdateUserRequest{Name: &name, Role: &role, IsActive: &inactive})
	require.NoError(t, err)
	require.Equal(t, "After", updated.Name)
	require.Equal(t, rbac.RoleAdmin, updated.Role)
	require.False(t, updated.IsActive)
	require.Equal(t, created.PasswordHash, updated.PasswordHash)
}

func TestUpdateUserNotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryUserRepo())
	name := "X"
	_, err := svc.Update(ctx, 99, UpdateUserRequest{Name: &name})
	require.ErrorIs(t, err, shared.ErrNotFound)
}
