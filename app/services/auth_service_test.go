package services

import (
	"context"
	"testing"

	"github.com/ostapdev/go-shop/app/apperrors"
	"github.com/ostapdev/go-shop/app/models"
	"github.com/ostapdev/go-shop/app/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	return NewAuthService(repositories.NewUserRepository(db), []byte("test-secret"))
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "Олена", "olena@example.com", "", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.HasFlow(models.AuthFlowBasic))

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "olena@example.com", claims.Email)

	_, _, err = svc.Login(ctx, "olena@example.com", "secret123")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "olena@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	_, _, err = svc.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Перший", "dup@example.com", "", "secret123")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "Другий", "dup@example.com", "", "secret456")
	assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
}

// A user that only exists from a guest checkout can claim the account by
// registering with the same phone.
func TestRegisterUpgradesGuestAccount(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	phone := "+380501112233"
	guest := &models.User{
		Name:  phone,
		Phone: &phone,
		AuthMethods: []models.AuthMethod{
			{Name: models.AuthFlowAuto},
		},
	}
	require.NoError(t, db.Create(guest).Error)
	require.NoError(t, db.Create(&models.Favourites{UserID: guest.ID}).Error)

	user, _, err := svc.Register(ctx, "Колишній гість", "guest@example.com", phone, "secret123")
	require.NoError(t, err)

	assert.Equal(t, guest.ID, user.ID)
	assert.Equal(t, "Колишній гість", user.Name)

	_, _, err = svc.Login(ctx, "guest@example.com", "secret123")
	require.NoError(t, err)
}

func TestLoginGoogleCreatesAndLinks(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	user, token, err := svc.LoginGoogle(ctx, "g@example.com", "Google User")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, user.HasFlow(models.AuthFlowGoogle))

	// A password account with the same email gains the Google flow instead
	// of a duplicate user.
	registered, _, err := svc.Register(ctx, "Basic", "linked@example.com", "", "secret123")
	require.NoError(t, err)

	linked, _, err := svc.LoginGoogle(ctx, "linked@example.com", "Basic")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, linked.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestLoginWithoutPasswordFlow(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	_, _, err := svc.LoginGoogle(ctx, "onlygoogle@example.com", "No Password")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "onlygoogle@example.com", "whatever")
	assert.ErrorIs(t, err, apperrors.ErrBasicFlowIncomplete)
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Олег", "oleh@example.com", "", "oldpass1")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "wrong", "newpass1")
	assert.ErrorIs(t, err, apperrors.ErrWrongOldPassword)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "oldpass1", "newpass1"))

	_, _, err = svc.Login(ctx, "oleh@example.com", "newpass1")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "oleh@example.com", "oldpass1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	_, err := svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
