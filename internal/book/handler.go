// internal/book/handler.go
package book

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"libris/internal/apperr"
	"libris/internal/auth"
	"libris/internal/httpx"
)

type Handler struct {
	service Service
	stream  *StockStream
}

func NewHandler(service Service, stream *StockStream) *Handler {
	return &Handler{service: service, stream: stream}
}

// Routes mounts the book endpoints. Every route re-verifies the token;
// mutations require the librarian role, stock adjustments only require an
// authenticated caller since the borrowing service invokes them with the
// borrowing patron's token.
func (h *Handler) Routes(tokens *auth.TokenService) chi.Router {
	r := chi.NewRouter()

	r.Route("/api/v1/books", func(r chi.Router) {
		r.Use(auth.Authenticate(tokens))

		r.Get("/", h.handleGetAll)
		r.Get("/search", h.handleSearch)
		r.Get("/stream/stock", h.handleStreamStock)
		r.Get("/{id}", h.handleGet)

		r.With(auth.RequireRole(auth.RoleLibrarian)).Post("/", h.handleCreate)
		r.With(auth.RequireRole(auth.RoleLibrarian)).Put("/{id}", h.handleUpdate)
		r.With(auth.RequireRole(auth.RoleLibrarian)).Delete("/{id}", h.handleDelete)

		r.Put("/{id}/decrease-stock", h.handleDecreaseStock)
		r.Put("/{id}/increase-stock", h.handleIncreaseStock)
	})

	return r
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	b, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, b)
}

func (h *Handler) handleGetAll(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.GetAll(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, books)
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

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))

	filter := SearchFilter{
		Title:  q.Get("title"),
		Author: q.Get("author"),
		ISBN:   q.Get("isbn"),
		Genre:  Genre(q.Get("genre")),
		Page:   page,
		Size:   size,
	}

	result, err := h.service.Search(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var req Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	b, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, b)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDecreaseStock(w http.ResponseWriter, r *http.Request) {
	h.adjustStock(w, r, h.service.DecreaseStock)
}

func (h *Handler) handleIncreaseStock(w http.ResponseWriter, r *http.Request) {
	h.adjustStock(w, r, h.service.IncreaseStock)
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request, adjust func(ctx context.Context, id uuid.UUID) error) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := adjust(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStreamStock streams stock updates as server-sent events until the
// client disconnects.
func (h *Handler) handleStreamStock(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.RespondError(w, apperr.New(apperr.KindInternal, "Streaming not supported"))
		return
	}

	events, cancel := h.stream.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
