package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/baskets-api/config"
	"github.com/kendall-kelly/baskets-api/middleware"
	"github.com/kendall-kelly/baskets-api/models"
	"github.com/kendall-kelly/baskets-api/services"
)

// UpdateUserRequest represents the request body for updating a user profile
type UpdateUserRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone" binding:"omitempty,frphone"`
	Address   *string `json:"address" binding:"omitempty,max=128"`
}

// userInfoProvider is swapped in tests
var userInfoProvider = func() services.UserInfoProvider {
	return services.NewAuth0Service(config.GetConfig())
}

// ResolveUser loads the stored profile of the authenticated caller. It
// returns nil without error when the request is anonymous or the caller has
// not created a profile yet.
func ResolveUser(c *gin.Context) (*models.User, error) {
	if user, ok := middleware.CurrentUser(c); ok {
		return user, nil
	}

	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		return nil, nil
	}

	user, err := services.GetUserService().FindByAuth0ID(c.Request.Context(), auth0ID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	middleware.SetCurrentUser(c, user)
	return user, nil
}

// currentUser resolves the caller and writes a 500 when the lookup fails.
// A nil user is passed on so the services report Unauthorized.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, err := ResolveUser(c)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return user, true
}

// CreateUser handles POST /api/v1/users - creates the caller's profile from Auth0 userinfo
func CreateUser(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorBody("MISSING_TOKEN", "Access token not found"))
		return
	}

	userInfo, err := userInfoProvider().GetUserInfo(c.Request.Context(), accessToken)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, errorBody("AUTH0_ERROR", "Failed to fetch user information from Auth0"))
		return
	}

	user, err := services.GetUserService().CreateProfile(c.Request.Context(), auth0ID, middleware.GetRole(c), userInfo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    user,
	})
}

// GetMyProfile handles GET /api/v1/users/me
func GetMyProfile(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	user, err := services.GetUserService().FindByAuth0ID(c.Request.Context(), auth0ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// UpdateMyProfile handles PUT /api/v1/users/me
func UpdateMyProfile(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := services.GetUserService().UpdateProfile(c.Request.Context(), auth0ID, services.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}
