package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/makemydestiny/travel-booking/internal/auth"
	"github.com/makemydestiny/travel-booking/internal/db"
	"github.com/makemydestiny/travel-booking/internal/models"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
	log            *logrus.Entry
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection, log *logrus.Entry) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
		log:            log.WithField("component", "auth"),
	}
}

// Register creates a customer account and returns a token for it
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if err := h.authService.ValidateRegistration(&req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	user := models.User{
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		PasswordHash:      passwordHash,
		Role:              models.RoleUser,
		VerificationToken: h.authService.GenerateVerificationToken(),
	}
	if err := h.userCollection.InsertUser(r.Context(), &user); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	// No mail is sent; the token is logged so the verify endpoint can be exercised.
	h.log.WithFields(logrus.Fields{
		"user_id":            user.ID.Hex(),
		"verification_token": user.VerificationToken,
	}).Info("user registered")

	token, err := h.authService.GenerateToken(&user)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, models.LoginResponse{Success: true, Token: token, User: user})
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, r, h.log, models.Validationf("Please provide an email and password"))
		return
	}

	user, err := h.userCollection.FindUserByEmail(r.Context(), req.Email)
	if errors.Is(err, models.ErrNotFound) {
		respondJSON(w, http.StatusUnauthorized, models.APIResponse{Message: "Invalid credentials"})
		return
	}
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if !h.authService.CheckPassword(req.Password, user.PasswordHash) {
		respondJSON(w, http.StatusUnauthorized, models.APIResponse{Message: "Invalid credentials"})
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if err := h.userCollection.UpdateLastLogin(r.Context(), user.ID.Hex()); err != nil {
		h.log.WithError(err).WithField("user_id", user.ID.Hex()).Warn("failed to update last login")
	}
	respondJSON(w, http.StatusOK, models.LoginResponse{Success: true, Token: token, User: *user})
}

// VerifyEmail marks the account holding the token as verified
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.userCollection.FindUserByVerificationToken(r.Context(), mux.Vars(r)["token"])
	if errors.Is(err, models.ErrNotFound) {
		respondError(w, r, h.log, models.ErrInvalidVerification)
		return
	}
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if err := h.userCollection.MarkVerified(r.Context(), user.ID.Hex()); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	h.log.WithField("user_id", user.ID.Hex()).Info("email verified")
	respondJSON(w, http.StatusOK, models.APIResponse{Success: true, Message: "Email verified successfully"})
}

// Me returns the current user's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userCollection.FindUserByID(r.Context(), requester(r).UserID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondData(w, http.StatusOK, user)
}
