package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"paygap/core"
	"paygap/storage"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string    `json:"token"`
	DisplayName string    `json:"display_name"`
	Role        core.Role `json:"role"`
}

// login godoc
//
//	@Summary		Admin login
//	@Description	Exchanges admin credentials for a bearer token
//	@Accept			json
//	@Produce		json
//	@Param			body	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	loginResponse
//	@Failure		401		{object}	map[string]string
//	@Router			/v1/auth/login [post]
func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err, a.logger)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required", nil, a.logger)
		return
	}

	admin, err := a.adminUsers.GetAdminUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrAdminUserNotFound) {
			// Burn a comparison so missing users cost the same as bad passwords
			_ = bcrypt.CompareHashAndPassword(
				[]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"),
				[]byte(req.Password))
			writeError(w, http.StatusUnauthorized, "Invalid credentials", nil, a.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, "Something went wrong", err, a.logger)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil, a.logger)
		return
	}

	token, err := a.generateJWT(admin.Username, admin.GUID, core.RoleAdmin)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Something went wrong", err, a.logger)
		return
	}

	a.logger.Infow("Admin logged in", "username", admin.Username)
	respondJSON(w, http.StatusOK, loginResponse{
		Token:       token,
		DisplayName: admin.DisplayName,
		Role:        core.RoleAdmin,
	})
}
