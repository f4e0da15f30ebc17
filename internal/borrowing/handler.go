// internal/borrowing/handler.go
package borrowing

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

// Routes mounts the borrowing endpoints. Patrons borrow and return;
// librarians see everything and run the overdue reports.
func (h *Handler) Routes(tokens *auth.TokenService) chi.Router {
	r := chi.NewRouter()

	r.Route("/api/v1/borrowings", func(r chi.Router) {
		r.Use(auth.Authenticate(tokens))

		r.With(auth.RequireRole(auth.RolePatron)).Post("/", h.handleBorrow)
		r.With(auth.RequireRole(auth.RolePatron)).Put("/{id}/return", h.handleReturn)

		r.With(auth.RequireRole(auth.RoleLibrarian)).Get("/", h.handleGetAll)
		r.With(auth.RequireRole(auth.RoleLibrarian)).Get("/overdue", h.handleGetOverdue)
		r.With(auth.RequireRole(auth.RoleLibrarian)).Get("/overdue/report", h.handleOverdueReport)

		r.Get("/{id}", h.handleGet)
		r.Get("/user/{userId}", h.handleGetByUser)
	})

	return r
}

func (h *Handler) handleBorrow(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	b, err := h.service.Borrow(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, b)
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	b, err := h.service.Return(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, b)
}

func (h *Handler) handleGetAll(w http.ResponseWriter, r *http.Request) {
	borrowings, err := h.service.GetAll(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, borrowings)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	b, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, b)
}

func (h *Handler) handleGetByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.UUIDParam(r, "userId")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	borrowings, err := h.service.GetByUser(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, borrowings)
}

func (h *Handler) handleGetOverdue(w http.ResponseWriter, r *http.Request) {
	borrowings, err := h.service.GetOverdue(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, borrowings)
}

func (h *Handler) handleOverdueReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.OverdueReport(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(report))
}
