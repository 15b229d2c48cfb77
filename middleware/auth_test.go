package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/kendall-kelly/baskets-api/models"
)

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		wantID    string
		wantErr   bool
	}{
		{
			name: "successfully extracts user ID",
			setupFunc: func(c *gin.Context) {
				c.Set("user_id", "auth0|123456")
			},
			wantID: "auth0|123456",
		},
		{
			name:      "user ID not found in context",
			setupFunc: func(c *gin.Context) {},
			wantErr:   true,
		},
		{
			name: "user ID is not a string",
			setupFunc: func(c *gin.Context) {
				c.Set("user_id", 12345)
			},
			wantErr: true,
		},
		{
			name: "user ID is empty",
			setupFunc: func(c *gin.Context) {
				c.Set("user_id", "")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			tt.setupFunc(c)

			gotID, err := GetUserID(c)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, gotID)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, gotID)
			}
		})
	}
}

func TestGetAccessToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("access_token", "stored")
	token, err := GetAccessToken(c)
	assert.NoError(t, err)
	assert.Equal(t, "stored", token)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Bearer from-header")
	token, err = GetAccessToken(c)
	assert.NoError(t, err)
	assert.Equal(t, "from-header", token)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Basic abc")
	_, err = GetAccessToken(c)
	var authErr *AuthError
	assert.ErrorAs(t, err, &authErr)
	assert.Equal(t, "MISSING_TOKEN", authErr.Code)
}

func TestGetClaimsAndRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		wantErr   bool
		wantRole  string
	}{
		{
			name: "successfully extracts claims",
			setupFunc: func(c *gin.Context) {
				c.Set("validated_claims", &validator.ValidatedClaims{
					RegisteredClaims: validator.RegisteredClaims{
						Issuer:  "https://test.auth0.com/",
						Subject: "auth0|123456",
					},
					CustomClaims: &CustomClaims{Role: models.RoleStaff},
				})
			},
			wantRole: models.RoleStaff,
		},
		{
			name:      "claims not found in context",
			setupFunc: func(c *gin.Context) {},
			wantErr:   true,
		},
		{
			name: "claims are not the expected type",
			setupFunc: func(c *gin.Context) {
				c.Set("validated_claims", "invalid")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			tt.setupFunc(c)

			claims, err := GetClaims(c)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, claims)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, claims)
			}
			assert.Equal(t, tt.wantRole, GetRole(c))
		})
	}
}

func TestRequireStaff(t *testing.T) {
	gin.SetMode(gin.TestMode)

	staff := &models.User{ID: 1, Role: models.RoleStaff}
	member := &models.User{ID: 2, Role: models.RoleMember}

	tests := []struct {
		name           string
		resolve        UserResolver
		wantStatusCode int
		wantAborted    bool
	}{
		{
			name:        "staff passes",
			resolve:     func(*gin.Context) (*models.User, error) { return staff, nil },
			wantAborted: false,
		},
		{
			name:           "member is forbidden",
			resolve:        func(*gin.Context) (*models.User, error) { return member, nil },
			wantStatusCode: http.StatusForbidden,
			wantAborted:    true,
		},
		{
			name:           "no profile is unauthorized",
			resolve:        func(*gin.Context) (*models.User, error) { return nil, nil },
			wantStatusCode: http.StatusUnauthorized,
			wantAborted:    true,
		},
		{
			name:           "lookup failure",
			resolve:        func(*gin.Context) (*models.User, error) { return nil, errors.New("db down") },
			wantStatusCode: http.StatusInternalServerError,
			wantAborted:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

			RequireStaff(tt.resolve)(c)

			if tt.wantAborted {
				assert.True(t, c.IsAborted())
				assert.Equal(t, tt.wantStatusCode, w.Code)
				return
			}
			assert.False(t, c.IsAborted())
			user, ok := CurrentUser(c)
			assert.True(t, ok)
			assert.Equal(t, staff, user)
		})
	}
}

func TestAuthError(t *testing.T) {
	var err error = &AuthError{Code: "MISSING_TOKEN", Message: "Access token not found"}
	assert.EqualError(t, err, "Access token not found")
}
