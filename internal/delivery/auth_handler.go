package delivery

import (
	"net/http"
	"time"

	"github.com/agassama1998/materialmanagementapp/internal/domain"
	"github.com/agassama1998/materialmanagementapp/internal/middleware"
	"github.com/agassama1998/materialmanagementapp/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	useCase      usecase.AuthUseCase
	cookieSecure bool
	log          *logrus.Logger
}

func NewAuthHandler(uc usecase.AuthUseCase, cookieSecure bool, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		useCase:      uc,
		cookieSecure: cookieSecure,
		log:          logger,
	}
}

// LoginRequest is shared by login and registration.
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

func (h *AuthHandler) RegisterRoutes(router gin.IRouter) {
	auth := router.Group("/auth")
	{
		auth.GET("/csrf", h.CSRFToken)
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", middleware.RequireAuth(), h.Me)
	}
}

func (h *AuthHandler) CSRFToken(c *gin.Context) {
	token := middleware.IssueCSRFToken(c, h.cookieSecure)
	SuccessResponse(c, http.StatusOK, "Anti-forgery token issued", gin.H{"csrf_token": token})
}

func (h *AuthHandler) Register(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "Register")
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		handlerLogger.Warnf("Failed to bind register request: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.useCase.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handlerLogger.Warnf("Registration failed for %s: %v", req.Email, err)
		respondError(c, "Registration failed", err, gin.H{"email": req.Email})
		return
	}

	handlerLogger.Infof("User registered: ID %d", user.ID)
	respondWrite(c, http.StatusCreated, "User registered successfully", "/", user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "Login")
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		handlerLogger.Warnf("Failed to bind login request: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := h.useCase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handlerLogger.Warnf("Login failed for %s: %v", req.Email, err)
		respondError(c, "Login failed", err, nil)
		return
	}

	maxAge := int(time.Until(res.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookieName, res.Token, maxAge, "/", "", h.cookieSecure, true)

	handlerLogger.Infof("User %d logged in", res.User.ID)
	respondWrite(c, http.StatusOK, "Login successful", "/", LoginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      res.User,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", h.cookieSecure, true)
	respondWrite(c, http.StatusOK, "Logged out", "/", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)
	user, err := h.useCase.GetUser(c.Request.Context(), p.UserID)
	if err != nil {
		respondError(c, "Failed to load profile", err, nil)
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", user)
}
