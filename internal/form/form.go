// Package form serves the browser form for entering notes.
//
// A successful submit redirects back to an empty form with a success
// banner; a failed submit re-renders the form with the entered values and
// the error.
package form

import (
	"crypto/subtle"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/noteservice"
)

//go:embed templates/form.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/form.html"))

type page struct {
	Action        string
	Draft         models.Draft
	Added         int
	Error         string
	TokenRequired bool
}

// Handler renders and submits the note form.
type Handler struct {
	svc   *noteservice.Service
	token string // empty disables the token check
}

// NewHandler creates a form handler. A non-empty token must be entered in
// the form for a submit to be accepted.
func NewHandler(svc *noteservice.Service, token string) *Handler {
	return &Handler{svc: svc, token: token}
}

// Routes mounts GET / and POST / on a new router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Show)
	r.Post("/", h.Submit)
	return r
}

// Show handles GET /: an empty form, with a success banner after a redirect.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	p := h.newPage(r)
	if added, err := strconv.Atoi(r.URL.Query().Get("added")); err == nil && added > 0 {
		p.Added = added
	}
	h.render(w, http.StatusOK, p)
}

// Submit handles POST /.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	if err := r.ParseForm(); err != nil {
		p := h.newPage(r)
		p.Error = "invalid form submission"
		h.render(w, http.StatusBadRequest, p)
		return
	}

	p := h.newPage(r)
	p.Draft = models.Draft{
		Title:    r.PostForm.Get("title"),
		Content:  r.PostForm.Get("content"),
		Keywords: r.PostForm.Get("keywords"),
		Category: r.PostForm.Get("category"),
	}

	if h.token != "" && subtle.ConstantTimeCompare([]byte(r.PostForm.Get("token")), []byte(h.token)) != 1 {
		p.Error = "invalid access token"
		h.render(w, http.StatusUnauthorized, p)
		return
	}

	note, err := h.svc.AddNote(r.Context(), p.Draft)
	if err != nil {
		p.Error = err.Error()
		h.render(w, http.StatusInternalServerError, p)
		return
	}

	target := url.URL{Path: p.Action, RawQuery: url.Values{"added": {strconv.Itoa(note.ID)}}.Encode()}
	http.Redirect(w, r, target.String(), http.StatusSeeOther)
}

func (h *Handler) newPage(r *http.Request) page {
	action := r.URL.Path
	if action == "" {
		action = "/"
	}
	return page{Action: action, TokenRequired: h.token != ""}
}

func (h *Handler) render(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTmpl.Execute(w, p); err != nil {
		slog.Error("render form failed", slog.String("error", err.Error()))
	}
}
