package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/middleware"
	"budgetbuddy/internal/models"
	"budgetbuddy/internal/services"
)

// AuthHandler handles authentication and profile requests.
type AuthHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
	tokens       *middleware.TokenManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService services.UserServicer, auditService services.AuditServicer, tokens *middleware.TokenManager) *AuthHandler {
	return &AuthHandler{userService: userService, auditService: auditService, tokens: tokens}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest changes username and/or email.
type UpdateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=255"`
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
}

// ChangePasswordRequest represents the password change payload
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=128"`
}

// UpdateCurrencyRequest represents the currency change payload
type UpdateCurrencyRequest struct {
	Currency string `json:"currency" binding:"required,iso4217"`
}

// UpdatePictureRequest represents the profile picture payload
type UpdatePictureRequest struct {
	ProfilePictureURL string `json:"profile_picture_url" binding:"required,url,max=2048"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message   string       `json:"message" example:"logged_in"`
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in" example:"3600"`
	User      *models.User `json:"user"`
}

// UserResponse wraps a user with a status message.
type UserResponse struct {
	Message string       `json:"message,omitempty" example:"profile_updated"`
	User    *models.User `json:"user"`
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, message string, user *models.User) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	c.JSON(status, AuthResponse{
		Message:   message,
		Token:     token,
		ExpiresIn: int64(h.tokens.TTL().Seconds()),
		User:      user,
	})
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new user and return an access token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} AuthResponse "User registered"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Username or email taken"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, services.AuditRegister, "user", user.ID, c.ClientIP(), nil)
	h.respondWithToken(c, http.StatusCreated, "registered", user)
}

// Login handles user login
// @Summary     Log in
// @Description Authenticate with email and password and return an access token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "Credentials"
// @Success     200 {object} AuthResponse "Logged in"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, services.AuditLogin, "user", user.ID, c.ClientIP(), nil)
	h.respondWithToken(c, http.StatusOK, "logged_in", user)
}

// GetProfile returns the authenticated user.
// @Summary     Get profile
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UserResponse
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{User: user})
}

// UpdateProfile changes the username and/or email.
// @Summary     Update profile
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Profile fields"
// @Success     200 {object} UserResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Username or email taken"
// @Router      /auth/update_profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}
	if req.Username == nil && req.Email == nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "username or email is required"))
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req.Username, req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]any{}
	if req.Username != nil {
		changes["username"] = *req.Username
	}
	if req.Email != nil {
		changes["email"] = *req.Email
	}
	h.auditService.Log(userID, services.AuditUpdateProfile, "user", userID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, UserResponse{Message: "profile_updated", User: user})
}

// ChangePassword replaces the password after checking the current one.
// @Summary     Change password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ChangePasswordRequest true "Old and new password"
// @Success     200 {object} MessageResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Incorrect password"
// @Router      /auth/change_password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ChangePasswordRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditChangePassword, "user", userID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "password_changed"})
}

// UpdateCurrency sets the display currency.
// @Summary     Update currency
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateCurrencyRequest true "ISO 4217 code"
// @Success     200 {object} UserResponse
// @Failure     400 {object} ErrorResponse "Invalid currency"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /auth/update_currency [put]
func (h *AuthHandler) UpdateCurrency(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCurrencyRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.UpdateCurrency(c.Request.Context(), userID, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{Message: "currency_updated", User: user})
}

// UpdatePicture stores the profile picture URL.
// @Summary     Update profile picture
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdatePictureRequest true "Picture URL"
// @Success     200 {object} UserResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /auth/update_picture [put]
func (h *AuthHandler) UpdatePicture(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePictureRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.UpdatePicture(c.Request.Context(), userID, req.ProfilePictureURL)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{Message: "picture_updated", User: user})
}
