// internal/adapters/in/http/market/handler/profile_handler.go
package marketHandler

import (
	"net/http"
	"strings"

	usecase "farmlink/internal/application/usecase"
	"farmlink/internal/adapters/in/http/middleware"
	"farmlink/internal/domain/session"
)

// ProfileHandler registers and returns user profiles.
//
//	POST /market/register   create profile for the verified identity
//	GET  /market/me         current session info
type ProfileHandler struct {
	uc *usecase.AuthUsecase
}

func NewProfileHandler(uc *usecase.AuthUsecase) http.Handler {
	return &ProfileHandler{uc: uc}
}

func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "profile handler is not configured")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/register"):
		h.handleRegister(w, r)
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/me"):
		h.handleMe(w, r)
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *ProfileHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	// The auth middleware verified the token; the session may still be
	// role-less when no profile exists yet. UID and email come from the
	// token, never from the body.
	sess := middleware.SessionFrom(r.Context())
	if !sess.Authenticated() {
		writeErr(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var body struct {
		UserType string `json:"userType"`
		FullName string `json:"fullName"`
		Phone    string `json:"phone"`
		FarmName string `json:"farmName"`
		Location string `json:"location"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	role, ok := session.ParseRole(body.UserType)
	if !ok {
		writeErr(w, http.StatusBadRequest, "userType must be buyer or farmer")
		return
	}

	p, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		UID:      sess.UID,
		Email:    sess.Email,
		Role:     role,
		FullName: body.FullName,
		Phone:    body.Phone,
		FarmName: body.FarmName,
		Location: body.Location,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProfileHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	if !sess.Authenticated() {
		writeErr(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"uid":      sess.UID,
		"email":    sess.Email,
		"userType": string(sess.Role),
	})
}
