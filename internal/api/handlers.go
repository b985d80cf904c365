package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starford/quill/internal/checksum"
	"github.com/starford/quill/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List every note in store order
//	@Tags			notes
//	@Produce		json
//	@Success		200		{object}	NoteListResponse
//	@Success		304		"Not modified"
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, sum, err := h.svc.Snapshot(r.Context())
	if err != nil {
		writeStoreError(w, "list notes", err)
		return
	}
	if sum != "" {
		w.Header().Set("ETag", checksum.ETag(sum))
	}
	if checksum.Matches(r.Header.Get("If-None-Match"), sum) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note by id
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		int	true	"Note id"
//	@Success		200	{object}	models.Note
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("id must be an integer"))
		return
	}
	note, err := h.svc.GetNote(r.Context(), id)
	if err != nil {
		writeStoreError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// AddNote handles POST /api/notes.
//
//	@Summary		Append a new note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddNoteRequest	true	"Note to append"
//	@Success		201		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req AddNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	note, err := h.svc.AddNote(r.Context(), req.Draft())
	if err != nil {
		writeStoreError(w, "add note", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}
