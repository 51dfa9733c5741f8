package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"scholarshipserver/internal/domain"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *api) handleAuthRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	// Clients may still post a role field; it is ignored, registration
	// always produces a USER.
	if err := decodeJSONAllowUnknownFields(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	fields := map[string]string{}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if req.Name == "" {
		fields["name"] = "required"
	}
	if !validEmail(req.Email) {
		fields["email"] = "must be a valid email"
	}
	if len(req.Password) < minPasswordLen {
		fields["password"] = "must be at least 4 characters"
	}
	if len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	u, token, err := a.authSvc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	writeAuthResponse(w, http.StatusCreated, u, token)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *api) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	req.Email = normalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"email": "required", "password": "required"}))
		return
	}

	ip := clientIP(r)
	if !a.credLimiter.Allow("login:ip:"+ip) || !a.credLimiter.Allow("login:email:"+strings.ToLower(req.Email)) {
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts")
		return
	}

	u, token, err := a.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	writeAuthResponse(w, http.StatusOK, u, token)
}

func (a *api) handleAuthMe(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	WriteJSON(w, http.StatusOK, toUserView(u))
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (a *api) handleAuthForgot(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	email := normalizeEmail(req.Email)
	if !validEmail(email) {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"email": "must be a valid email"}))
		return
	}

	ip := clientIP(r)
	if !a.credLimiter.Allow("forgot:ip:"+ip) || !a.credLimiter.Allow("forgot:email:"+strings.ToLower(email)) {
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts")
		return
	}

	if err := a.authSvc.RequestPasswordReset(r.Context(), email); err != nil {
		if errors.Is(err, domain.ErrEmailSend) {
			a.logger.Error("send reset email failed", "err", err)
		}
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    "Email sent",
	})
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (a *api) handleAuthReset(w http.ResponseWriter, r *http.Request) {
	rawToken := strings.TrimSpace(r.PathValue("resetToken"))
	if rawToken == "" {
		WriteDomainError(w, domain.ErrResetTokenInvalid)
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	if len(req.Password) < minPasswordLen {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"password": "must be at least 4 characters"}))
		return
	}

	token, err := a.authSvc.ResetPassword(r.Context(), rawToken, req.Password)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"token":   token,
	})
}
