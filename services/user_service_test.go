package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kendall-kelly/baskets-api/config"
	"github.com/kendall-kelly/baskets-api/models"
	"github.com/kendall-kelly/baskets-api/tests/testutil"
)

func TestUserService_CreateProfile(t *testing.T) {
	db := testutil.NewTestDB(t)
	service := NewUserService(db)
	ctx := context.Background()

	user, err := service.CreateProfile(ctx, "auth0|new", "", &Auth0UserInfo{
		Email: "Jane.Doe@Example.com",
		Name:  "Jane van Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane.Doe", user.Username)
	assert.Equal(t, "Jane", user.FirstName)
	assert.Equal(t, "van Doe", user.LastName)
	assert.Equal(t, "jane.doe@example.com", user.Email)
	assert.Equal(t, models.RoleMember, user.Role)

	_, err = service.CreateProfile(ctx, "auth0|new", "", &Auth0UserInfo{Email: "other@example.com", Name: "A B"})
	assert.ErrorIs(t, err, &Error{Kind: KindConflict, Code: "USER_EXISTS"})

	staff, err := service.CreateProfile(ctx, "auth0|staff", models.RoleStaff, &Auth0UserInfo{
		Email: "s@example.com", Nickname: "boss", GivenName: "Sam", FamilyName: "Lee",
	})
	require.NoError(t, err)
	assert.True(t, staff.IsStaff())
	assert.Equal(t, "boss", staff.Username)

	_, err = service.CreateProfile(ctx, "auth0|x", "admin", &Auth0UserInfo{Name: "No Mail"})
	assert.ErrorIs(t, err, &Error{Kind: KindInvalidInput, Code: "MISSING_EMAIL"})
	_, err = service.CreateProfile(ctx, "auth0|x", "", &Auth0UserInfo{Email: "x@example.com", Name: "Mononym"})
	assert.ErrorIs(t, err, &Error{Kind: KindInvalidInput, Code: "MISSING_NAME"})
}

func TestUserService_UpdateProfile(t *testing.T) {
	db := testutil.NewTestDB(t)
	f := testutil.Seed(t, db)
	service := NewUserService(db)
	ctx := context.Background()

	phone := "06 12 34 56 78"
	address := "3 rue des Lilas"
	user, err := service.UpdateProfile(ctx, f.Member.Auth0ID, UpdateProfileInput{Phone: &phone, Address: &address})
	require.NoError(t, err)
	assert.Equal(t, phone, user.Phone)
	assert.Equal(t, address, user.Address)
	assert.Equal(t, "Martin", user.LastName)

	taken := "BOB@example.com"
	_, err = service.UpdateProfile(ctx, f.Member.Auth0ID, UpdateProfileInput{Email: &taken})
	assert.ErrorIs(t, err, &Error{Kind: KindConflict, Code: "EMAIL_EXISTS"})

	blank := " "
	_, err = service.UpdateProfile(ctx, f.Member.Auth0ID, UpdateProfileInput{LastName: &blank})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = service.UpdateProfile(ctx, "auth0|nobody", UpdateProfileInput{})
	assert.ErrorIs(t, err, &Error{Kind: KindNotFound, Code: "USER_NOT_FOUND"})

	unchanged, err := service.UpdateProfile(ctx, f.Other.Auth0ID, UpdateProfileInput{})
	require.NoError(t, err)
	assert.Equal(t, f.Other.Email, unchanged.Email)
}

func TestAuth0Service_GetUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" || r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Auth0UserInfo{Sub: "auth0|1", Email: "a@example.com", Nickname: "a"})
	}))
	defer server.Close()

	service := NewAuth0Service(&config.Config{Auth0Domain: server.URL})

	info, err := service.GetUserInfo(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "auth0|1", info.Sub)
	assert.Equal(t, "a", info.Username())

	_, err = service.GetUserInfo(context.Background(), "bad-token")
	assert.Error(t, err)
}

func TestAuth0UserInfo_Names(t *testing.T) {
	tests := []struct {
		name      string
		info      Auth0UserInfo
		wantFirst string
		wantLast  string
	}{
		{"given and family", Auth0UserInfo{GivenName: "Ana", FamilyName: "Lopez", Name: "ignored"}, "Ana", "Lopez"},
		{"split full name", Auth0UserInfo{Name: "Jean Paul Sartre"}, "Jean", "Paul Sartre"},
		{"single word", Auth0UserInfo{Name: "Cher"}, "Cher", ""},
		{"empty", Auth0UserInfo{}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := tt.info.Names()
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}
