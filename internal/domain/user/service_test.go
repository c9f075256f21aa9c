package user

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/agroplan/internal/common"
)

type fakeRepository struct {
	users map[uuid.UUID]*User
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{users: make(map[uuid.UUID]*User)}
}

func (f *fakeRepository) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.NotFoundf("user %s", id)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.NotFoundf("user %s", email)
}

func (f *fakeRepository) Update(ctx context.Context, u *User) error {
	if _, ok := f.users[u.ID]; !ok {
		return common.NotFoundf("user %s", u.ID)
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return common.NotFoundf("user %s", id)
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return common.NotFoundf("user %s", id)
	}
	delete(f.users, id)
	return nil
}

// fakeProvisioner records which users were provisioned with defaults
type fakeProvisioner struct {
	provisioned []uuid.UUID
}

func (f *fakeProvisioner) ProvisionDefaults(ctx context.Context, userID uuid.UUID) error {
	f.provisioned = append(f.provisioned, userID)
	return nil
}

func newTestService() (*Service, *fakeRepository, *fakeProvisioner) {
	repo := newFakeRepository()
	prov := &fakeProvisioner{}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewService(repo, prov, logger), repo, prov
}

func TestRegister(t *testing.T) {
	svc, repo, prov := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{
		Name:     "Maria",
		Email:    "  Maria@Farm.Example  ",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "maria@farm.example", u.Email)
	require.Len(t, prov.provisioned, 1)
	assert.Equal(t, u.ID, prov.provisioned[0])

	// The stored hash verifies against the original password.
	stored := repo.users[u.ID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct-horse")))
	assert.NotEqual(t, "correct-horse", stored.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "", Email: "a@b.c", Password: "longenough"})
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	_, err = svc.Register(ctx, RegisterInput{Name: "Maria", Email: "not-an-email", Password: "longenough"})
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	_, err = svc.Register(ctx, RegisterInput{Name: "Maria", Email: "a@b.c", Password: "short"})
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Maria", Email: "maria@farm.example", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "Other", Email: "MARIA@farm.example", Password: "longenough"})
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterInput{Name: "Maria", Email: "maria@farm.example", Password: "correct-horse"})
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "maria@farm.example", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = svc.Authenticate(ctx, "maria@farm.example", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	// Unknown accounts get the same error as bad passwords.
	_, err = svc.Authenticate(ctx, "ghost@farm.example", "whatever")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestUpdatePassword(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Name: "Maria", Email: "maria@farm.example", Password: "correct-horse"})
	require.NoError(t, err)

	err = svc.UpdatePassword(ctx, u.ID, "tiny")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	require.NoError(t, svc.UpdatePassword(ctx, u.ID, "battery-staple"))

	_, err = svc.Authenticate(ctx, "maria@farm.example", "correct-horse")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	_, err = svc.Authenticate(ctx, "maria@farm.example", "battery-staple")
	assert.NoError(t, err)
}
