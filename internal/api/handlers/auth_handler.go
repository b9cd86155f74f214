package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kritin29/Patient-Management-Web-App/internal/auth"
	"github.com/kritin29/Patient-Management-Web-App/internal/forms"
	"github.com/kritin29/Patient-Management-Web-App/internal/models"
	"github.com/kritin29/Patient-Management-Web-App/internal/services"
	"github.com/kritin29/Patient-Management-Web-App/internal/session"
	"github.com/kritin29/Patient-Management-Web-App/internal/signup"
)

const signupPath = "/api/v1/auth/signup"

// SignupService issues and verifies signup OTPs.
type SignupService interface {
	Issue(ctx context.Context, sess *session.Session, username, email, password string) (string, error)
	Verify(ctx context.Context, sess *session.Session, code string) (models.User, error)
}

// AuthHandler handles signup, sign in and the current user.
type AuthHandler struct {
	users  services.UserServiceProvider
	signup SignupService
	tokens *auth.Manager
	secure bool
}

// NewAuthHandler creates a new AuthHandler. secure sets the Secure flag on
// the token cookie.
func NewAuthHandler(users services.UserServiceProvider, signup SignupService, tokens *auth.Manager, secure bool) *AuthHandler {
	return &AuthHandler{users: users, signup: signup, tokens: tokens, secure: secure}
}

// SignUp validates the form and mails an OTP. The account is created only
// once the OTP is verified.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if h.tokens.SignedIn(r) {
		writeError(w, http.StatusConflict, "You are already signed in.")
		return
	}

	var form forms.SignUpForm
	if err := forms.Bind(r, &form); err != nil {
		writeFormError(w, err)
		return
	}

	usernameTaken, emailTaken, err := h.users.Taken(r.Context(), form.Username, form.Email)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check existing accounts")
		http.Error(w, "Failed to sign up", http.StatusInternalServerError)
		return
	}
	if usernameTaken || emailTaken {
		ve := forms.ValidationErrors{}
		if usernameTaken {
			ve["username"] = "That username is taken. Please choose a different one."
		}
		if emailTaken {
			ve["email"] = "That email already exists. Please choose a different one."
		}
		writeFormError(w, ve)
		return
	}

	sess, ok := requestSession(w, r)
	if !ok {
		return
	}
	if _, err := h.signup.Issue(r.Context(), sess, form.Username, form.Email, form.Password); err != nil {
		log.Error().Err(err).Str("email", form.Email).Msg("Failed to issue signup OTP")
		http.Error(w, "Failed to send verification email", http.StatusInternalServerError)
		return
	}

	log.Info().Str("username", form.Username).Str("session_id", sess.ID).Msg("Signup OTP issued")
	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "An OTP has been sent to your email.",
		"email":   form.Email,
	})
}

// VerifyOTP completes a signup. Any attempt, right or wrong, uses up the
// pending signup.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var form forms.OTPForm
	if err := forms.Bind(r, &form); err != nil {
		writeFormError(w, err)
		return
	}
	sess, ok := requestSession(w, r)
	if !ok {
		return
	}

	user, err := h.signup.Verify(r.Context(), sess, form.OTP)
	switch {
	case err == nil:
	case errors.Is(err, signup.ErrNoPendingSignup), errors.Is(err, signup.ErrOTPMismatch), errors.Is(err, signup.ErrOTPExpired):
		log.Info().Err(err).Str("session_id", sess.ID).Msg("OTP verification failed")
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":    err.Error(),
			"redirect": signupPath,
		})
		return
	case errors.Is(err, services.ErrDuplicate):
		writeError(w, http.StatusConflict, "That username or email was registered in the meantime.")
		return
	default:
		log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to complete signup")
		http.Error(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	log.Info().Str("user_id", user.ID).Msg("Account created")
	writeJSON(w, http.StatusCreated, user)
}

// SignIn checks credentials and sets the JWT cookie.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if h.tokens.SignedIn(r) {
		writeError(w, http.StatusConflict, "You are already signed in.")
		return
	}

	var form forms.SignInForm
	if err := forms.Bind(r, &form); err != nil {
		writeFormError(w, err)
		return
	}

	user, err := h.users.AuthenticateUser(r.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("email", form.Email).Msg("Failed authentication attempt")
			writeError(w, http.StatusUnauthorized, "Login Unsuccessful. Please check email and password")
			return
		}
		log.Error().Err(err).Str("email", form.Email).Msg("Failed to authenticate user")
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	token, err := h.tokens.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Expires:  time.Now().Add(auth.TokenLifetime),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// SignOut clears the token cookie.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	w.WriteHeader(http.StatusNoContent)
}

// GetMe retrieves the currently authenticated user from the token.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			log.Warn().Str("user_id", claims.UserID).Msg("User from token not found in DB")
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to load user")
		http.Error(w, "Failed to load user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
