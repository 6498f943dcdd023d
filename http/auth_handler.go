package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/assumables-api/internal/auth"
)

type AuthDeps struct {
	Service *auth.Service
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func RegisterAuth(r chi.Router, d AuthDeps) {
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var body loginRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "invalid_json", "detail": err.Error()})
			return
		}
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Email == "" || body.Password == "" {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]any{"error": "credentials_required"})
			return
		}
		token, err := d.Service.Login(req.Context(), body.Email, body.Password)
		if err != nil {
			render.Status(req, http.StatusUnauthorized)
			render.JSON(w, req, map[string]any{"error": "invalid_credentials"})
			return
		}
		render.JSON(w, req, map[string]any{"token": token})
	})

	r.Post("/auth/logout", func(w http.ResponseWriter, req *http.Request) {
		if token := auth.BearerToken(req); token != "" {
			_ = d.Service.Logout(req.Context(), token)
		}
		render.JSON(w, req, map[string]any{"ok": true})
	})

	r.Get("/auth/me", func(w http.ResponseWriter, req *http.Request) {
		email, err := d.Service.Identify(req.Context(), auth.BearerToken(req))
		if err != nil {
			render.Status(req, http.StatusUnauthorized)
			render.JSON(w, req, map[string]any{"error": "unauthorized"})
			return
		}
		render.JSON(w, req, map[string]any{"email": email})
	})
}
