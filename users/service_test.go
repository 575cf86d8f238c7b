package users

import (
	"context"
	"testing"

	"github.com/krishkalaria12/snap-vault/apperr"
	"github.com/krishkalaria12/snap-vault/database"
	"github.com/krishkalaria12/snap-vault/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memStore struct {
	users     map[string]*models.User
	inserts   int
	createErr error
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*models.User{}}
}

func (m *memStore) CreateUser(_ context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.inserts++
	user.ID = uint(m.inserts)
	m.users[user.Email] = user
	return nil
}

func (m *memStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.users[email], nil
}

func TestCreateHashesPassword(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	user, err := svc.Create(context.Background(), " Ada@Example.com ", "hunter22")
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "hunter22", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hunter22")))

	cost, err := bcrypt.Cost([]byte(user.Password))
	require.NoError(t, err)
	assert.Equal(t, BcryptCost, cost)
}

func TestCreateDuplicateEmailIsConflict(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	_, err := svc.Create(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "ADA@example.com", "another1")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, 1, store.inserts)
}

func TestCreateUniqueViolationIsConflict(t *testing.T) {
	store := newMemStore()
	store.createErr = database.ErrDuplicate
	svc := NewService(store)

	_, err := svc.Create(context.Background(), "ada@example.com", "hunter22")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestCreateValidatesInput(t *testing.T) {
	svc := NewService(newMemStore())

	_, err := svc.Create(context.Background(), "not-an-email", "hunter22")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Create(context.Background(), "ada@example.com", "short")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestFindOne(t *testing.T) {
	svc := NewService(newMemStore())
	created, err := svc.Create(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)

	found, err := svc.FindOne(context.Background(), "Ada@Example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	missing, err := svc.FindOne(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
