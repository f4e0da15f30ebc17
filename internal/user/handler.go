// internal/user/handler.go
package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"libris/internal/auth"
	"libris/internal/httpx"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the auth and user endpoints. register and login are public;
// everything else re-verifies the token even when the gateway already did.
func (h *Handler) Routes(tokens *auth.TokenService) chi.Router {
	r := chi.NewRouter()

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(tokens))
			r.With(auth.RequireRole(auth.RoleLibrarian)).Post("/register-librarian", h.handleRegisterLibrarian)
		})
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(auth.Authenticate(tokens))

		r.With(auth.RequireRole(auth.RoleLibrarian)).Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Get("/{id}/check", h.handleCheck)
		r.Put("/{id}", h.handleUpdate)
		r.With(auth.RequireRole(auth.RoleLibrarian)).Delete("/{id}", h.handleDelete)
	})

	return r
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, auth.RolePatron)
}

func (h *Handler) handleRegisterLibrarian(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, auth.RoleLibrarian)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request, role auth.Role) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	u, err := h.service.Register(r.Context(), req, role)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, u)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	token, err := h.service.Login(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, LoginResponse{Token: token})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, users)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	u, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, u)
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.CheckUser(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	u, err := h.service.UpdateUser(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, u)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
