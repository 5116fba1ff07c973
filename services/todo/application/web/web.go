// Package web serves the single server-rendered todo page and the static
// assets its script needs. The page reads through the same TodoService as
// the JSON API; all mutations go through the API from the browser.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/ghuser/todoapp/pkg/app"
	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/pkg/logger"
	appsvcs "github.com/ghuser/todoapp/services/todo/application/services"
	"github.com/ghuser/todoapp/services/todo/domain/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

const (
	sessionName = "todo-ui"
	filterKey   = "filter"
)

// Filters the page understands. The API itself is never filtered.
const (
	FilterAll       = "all"
	FilterActive    = "active"
	FilterCompleted = "completed"
)

// PageData is the template data for the index page.
type PageData struct {
	Title          string
	Version        string
	Filter         string
	Filters        []string
	Todos          []*models.Todo
	Total          int
	ActiveCount    int
	CompletedCount int
}

// Handler renders the index page.
type Handler struct {
	svc     *appsvcs.Services
	store   sessions.Store
	tmpl    *template.Template
	version string
	log     logger.Logger
}

// NewHandler parses the embedded templates. store may be nil, in which case
// the filter choice is not remembered between visits.
func NewHandler(svc *appsvcs.Services, store sessions.Store, version string, log logger.Logger) *Handler {
	funcs := template.FuncMap{
		"plural": func(n int, one, many string) string {
			if n == 1 {
				return one
			}
			return many
		},
	}
	tmpl := template.Must(template.New("index.html").Funcs(funcs).ParseFS(templateFS, "templates/index.html"))
	return &Handler{svc: svc, store: store, tmpl: tmpl, version: version, log: log}
}

// Routes registers the page and its static assets.
func Routes(r chi.Router, a *app.Application, svcs *appsvcs.Services) {
	version := ""
	if a.Config != nil {
		version = a.Config.ServiceVersion
	}
	h := NewHandler(svcs, a.SessionStore, version, a.Logger)

	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	r.Get("/", h.Index)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticSub)))
}

// Index renders every todo (narrowed by the active filter) with counts.
// ?filter= selects a filter and stores it in the session; without it the
// stored choice is used, defaulting to "all".
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	filter := h.resolveFilter(w, r)

	todos, err := h.svc.Todo.List(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "render index: list todos", "error", err)
		httpx.Fail(w, http.StatusInternalServerError, "Failed to retrieve todos")
		return
	}

	data := PageData{
		Title:   "Todo List",
		Version: h.version,
		Filter:  filter,
		Filters: []string{FilterAll, FilterActive, FilterCompleted},
		Total:   len(todos),
	}
	for _, t := range todos {
		if t.Completed {
			data.CompletedCount++
		} else {
			data.ActiveCount++
		}
		if matches(filter, t) {
			data.Todos = append(data.Todos, t)
		}
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		h.log.ErrorContext(r.Context(), "render index: execute template", "error", err)
		httpx.Fail(w, http.StatusInternalServerError, httpx.MsgInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) resolveFilter(w http.ResponseWriter, r *http.Request) string {
	var session *sessions.Session
	if h.store != nil {
		s, err := h.store.Get(r, sessionName)
		if err != nil {
			// undecodable cookie (e.g. rotated keys): start a fresh session
			h.log.DebugContext(r.Context(), "discarding ui session", "error", err)
		}
		session = s
	}

	if q := r.URL.Query().Get("filter"); validFilter(q) {
		if session != nil {
			session.Values[filterKey] = q
			if err := session.Save(r, w); err != nil {
				h.log.WarnContext(r.Context(), "save ui session", "error", err)
			}
		}
		return q
	}

	if session != nil {
		if f, ok := session.Values[filterKey].(string); ok && validFilter(f) {
			return f
		}
	}
	return FilterAll
}

func validFilter(f string) bool {
	return f == FilterAll || f == FilterActive || f == FilterCompleted
}

func matches(filter string, t *models.Todo) bool {
	switch filter {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}
