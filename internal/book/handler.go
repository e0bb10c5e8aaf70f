package book

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/book-tracker/internal/httputil"
	"github.com/redmonkez12/book-tracker/internal/logging"
)

// OwnerFunc returns the authenticated user's id for the request
type OwnerFunc func(r *http.Request) (string, bool)

// Handler contains HTTP handlers for the book endpoints. All routes expect
// the auth middleware to have run.
type Handler struct {
	catalog   *Catalog
	owner     OwnerFunc
	validator *httputil.Validator
}

func NewHandler(catalog *Catalog, owner OwnerFunc, validator *httputil.Validator) *Handler {
	return &Handler{
		catalog:   catalog,
		owner:     owner,
		validator: validator,
	}
}

// AddBookRequest represents the add-book request body.
// Status is restricted to the two known values at this boundary.
type AddBookRequest struct {
	Title  string `json:"title" validate:"required,max=500"`
	Author string `json:"author" validate:"required,max=500"`
	Rating *int   `json:"rating" validate:"required"`
	Status string `json:"status" validate:"required,oneof=read to-read"`
}

// UpdateStatusRequest is the optional JSON body of a status update
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=read to-read"`
}

// ListResponse wraps the user's books
type ListResponse struct {
	Books []Book `json:"books"`
}

// Add handles book creation
// @Summary      Add a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AddBookRequest true "Book"
// @Success      200 {object} httputil.MessageResponse
// @Failure      401 {object} httputil.ErrorResponse "Invalid token"
// @Failure      422 {object} httputil.ErrorResponse "Validation error"
// @Router       /api/books [post]
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	ownerID, ok := h.ownerOrAbort(w, r)
	if !ok {
		return
	}

	var req AddBookRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		httputil.RespondDecodeError(w, logger, err)
		return
	}

	id, err := h.catalog.Add(r.Context(), ownerID, req.Title, req.Author, *req.Rating, req.Status)
	if err != nil {
		logger.Error("failed to add book", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to add book", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("book added", "book_id", id)
	httputil.RespondMessage(w, "Book added successfully")
}

// List returns the authenticated user's books
// @Summary      List books
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} ListResponse
// @Failure      401 {object} httputil.ErrorResponse "Invalid token"
// @Router       /api/books [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	ownerID, ok := h.ownerOrAbort(w, r)
	if !ok {
		return
	}

	books, err := h.catalog.List(r.Context(), ownerID)
	if err != nil {
		logger.Error("failed to list books", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list books", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, ListResponse{Books: books}, http.StatusOK)
}

// UpdateStatus changes a book's status. The new status comes from the
// "status" query parameter, or from a JSON body when the parameter is absent.
// @Summary      Update book status
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        book_id path string true "Book ID"
// @Param        status query string false "New status (read or to-read)"
// @Success      200 {object} httputil.MessageResponse
// @Failure      401 {object} httputil.ErrorResponse "Invalid token"
// @Failure      404 {object} httputil.ErrorResponse "Book not found"
// @Failure      422 {object} httputil.ErrorResponse "Validation error"
// @Router       /api/books/{book_id} [put]
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	ownerID, ok := h.ownerOrAbort(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if r.URL.Query().Has("status") {
		req.Status = r.URL.Query().Get("status")
		if err := h.validator.Validate(&req); err != nil {
			httputil.RespondDecodeError(w, logger, err)
			return
		}
	} else if err := h.validator.DecodeJSON(r, &req); err != nil {
		httputil.RespondDecodeError(w, logger, err)
		return
	}

	bookID := chi.URLParam(r, "bookID")
	if err := h.catalog.UpdateStatus(r.Context(), bookID, ownerID, req.Status); err != nil {
		h.respondMutationError(w, logger, bookID, err)
		return
	}

	logger.Info("book status updated", "book_id", bookID, "status", req.Status)
	httputil.RespondMessage(w, "Book status updated")
}

// Delete removes a book
// @Summary      Delete a book
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        book_id path string true "Book ID"
// @Success      200 {object} httputil.MessageResponse
// @Failure      401 {object} httputil.ErrorResponse "Invalid token"
// @Failure      404 {object} httputil.ErrorResponse "Book not found"
// @Router       /api/books/{book_id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	ownerID, ok := h.ownerOrAbort(w, r)
	if !ok {
		return
	}

	bookID := chi.URLParam(r, "bookID")
	if err := h.catalog.Delete(r.Context(), bookID, ownerID); err != nil {
		h.respondMutationError(w, logger, bookID, err)
		return
	}

	logger.Info("book deleted", "book_id", bookID)
	httputil.RespondMessage(w, "Book deleted")
}

func (h *Handler) ownerOrAbort(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID, ok := h.owner(r)
	if !ok {
		// RequireAuth was not mounted in front of this route
		w.Header().Set("WWW-Authenticate", "Bearer")
		httputil.RespondErrorWithCode(w, "Could not validate credentials", httputil.CodeInvalidToken, http.StatusUnauthorized)
		return "", false
	}
	return ownerID, true
}

func (h *Handler) respondMutationError(w http.ResponseWriter, logger *logging.Logger, bookID string, err error) {
	if errors.Is(err, ErrNotFound) {
		logger.Warn("book not found", "book_id", bookID)
		httputil.RespondErrorWithCode(w, "Book not found", httputil.CodeBookNotFound, http.StatusNotFound)
		return
	}
	logger.Error("book mutation failed", "book_id", bookID, "error", err.Error())
	httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
}
