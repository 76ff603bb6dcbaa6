package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plview/internal/models"
	"github.com/desertthunder/plview/internal/server"
	"github.com/desertthunder/plview/internal/shared"
)

//go:embed templates/*.html
var templateFiles embed.FS

// DefaultPageSize is the number of tracks shown per playlist page.
const DefaultPageSize = 9

var pages = []string{"index.html", "playlist.html", "error.html"}

var templateFuncs = template.FuncMap{"playlistPath": playlistPath}

// Handler serves the web interface. It implements [server.Handler].
type Handler struct {
	store     models.Store
	logger    *log.Logger
	pageSize  int
	mux       *http.ServeMux
	templates map[string]*template.Template
}

var _ server.Handler = (*Handler)(nil)

// TrackView is a track prepared for rendering.
type TrackView struct {
	models.Track
	MediaID   string
	Thumbnail string
}

// NewHandler parses the embedded templates and wires the routes. A pageSize below 1 uses [DefaultPageSize].
func NewHandler(store models.Store, logger *log.Logger, pageSize int) (*Handler, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	h := &Handler{
		store:     store,
		logger:    shared.WithLogger(logger, "component", "web"),
		pageSize:  pageSize,
		mux:       http.NewServeMux(),
		templates: make(map[string]*template.Template, len(pages)),
	}

	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(templateFuncs).ParseFS(templateFiles, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		h.templates[page] = tmpl
	}

	h.mux.HandleFunc("GET /{$}", h.index)
	h.mux.HandleFunc("GET /playlist/{name}", h.playlist)
	h.mux.HandleFunc("POST /tracks/{id}/play", h.play)
	h.mux.HandleFunc("GET /healthz", h.health)

	return h, nil
}

// Routes returns the patterns served by the handler.
func (h *Handler) Routes() []string {
	return []string{"/"}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type indexData struct {
	Playlists []string
	Current   string
	Track     *TrackView
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlists, err := h.store.ListPlaylists(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	track, err := h.store.RandomTrack(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := indexData{Playlists: playlists}
	if track != nil {
		view := newTrackView(*track)
		data.Track = &view
	}

	h.render(w, r, http.StatusOK, "index.html", data)
}

type playlistData struct {
	Playlists []string
	Current   string
	Page      Page[TrackView]
	Search    string
	Sort      string
	Direction string
	PrevURL   string
	NextURL   string
	SortLinks []sortLink
}

type sortLink struct {
	Label  string
	URL    string
	Active bool
}

var sortOptions = []models.SortField{models.SortDate, models.SortArtist, models.SortTitle, models.SortPlayCount, models.SortRandom}

func (h *Handler) playlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("name")
	query := r.URL.Query()

	number, opts, err := parsePlaylistQuery(query)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	playlists, err := h.store.ListPlaylists(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !slices.Contains(playlists, name) {
		h.renderError(w, r, http.StatusNotFound, fmt.Sprintf("Playlist %q not found.", name))
		return
	}

	tracks, err := h.store.ReadPlaylist(ctx, name, opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	views := make([]TrackView, len(tracks))
	for i, t := range tracks {
		views[i] = newTrackView(t)
	}
	page := Paginate(views, number, h.pageSize)

	data := playlistData{
		Playlists: playlists,
		Current:   name,
		Page:      page,
		Search:    opts.Search,
		Sort:      opts.Sort.String(),
		Direction: opts.Direction.String(),
	}
	if page.HasPrev() {
		data.PrevURL = playlistURL(name, query, page.Number-1)
	}
	if page.HasNext() {
		data.NextURL = playlistURL(name, query, page.Number+1)
	}
	for _, field := range sortOptions {
		q := url.Values{"sort": {field.String()}}
		if opts.Search != "" {
			q.Set("search", opts.Search)
		}
		if field == opts.Sort && opts.Direction == models.Ascending && field != models.SortRandom {
			q.Set("direction", models.Descending.String())
		}
		data.SortLinks = append(data.SortLinks, sortLink{
			Label:  field.String(),
			URL:    playlistURL(name, q, 1),
			Active: field == opts.Sort,
		})
	}

	h.render(w, r, http.StatusOK, "playlist.html", data)
}

func (h *Handler) play(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		h.renderError(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid track id %q.", r.PathValue("id")))
		return
	}

	ok, err := h.store.IncrementPlayCount(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !ok {
		h.renderError(w, r, http.StatusNotFound, fmt.Sprintf("Track %d not found.", id))
		return
	}

	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

// parsePlaylistQuery validates the page, search, sort and direction parameters.
func parsePlaylistQuery(q url.Values) (int, models.ReadOptions, error) {
	opts := models.ReadOptions{Search: q.Get("search")}

	number := 1
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, opts, fmt.Errorf("%w: page must be a positive integer, got %q", shared.ErrInvalidInput, raw)
		}
		number = n
	}

	sort, err := models.ParseSortField(q.Get("sort"))
	if err != nil {
		return 0, opts, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	opts.Sort = sort

	dir, err := models.ParseSortDirection(q.Get("direction"))
	if err != nil {
		return 0, opts, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	opts.Direction = dir

	return number, opts, nil
}

// playlistURL builds a playlist link that keeps q but points at page.
func playlistURL(name string, q url.Values, page int) string {
	values := url.Values{}
	for k, v := range q {
		values[k] = slices.Clone(v)
	}
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	} else {
		values.Del("page")
	}

	if len(values) == 0 {
		return playlistPath(name)
	}
	return playlistPath(name) + "?" + values.Encode()
}

// playlistPath escapes name as a single path segment so titles containing "/" still match the route.
func playlistPath(name string) string {
	return "/playlist/" + url.PathEscape(name)
}

// backTo returns the local path of the referring page, or "/".
func backTo(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return "/"
	}
	back := url.URL{Path: ref.Path, RawQuery: ref.RawQuery}
	return back.String()
}

func newTrackView(t models.Track) TrackView {
	view := TrackView{Track: t}
	if id, ok := MediaID(t.URL); ok {
		view.MediaID = id
		view.Thumbnail = Thumbnail(id)
	}
	return view
}

type errorData struct {
	Playlists []string
	Current   string
	Status    int
	Title     string
	Message   string
}

// fail logs a storage fault and answers 500 without exposing the cause.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("store failure", "request_id", server.RequestID(r.Context()), "path", r.URL.Path, "err", err)
	h.renderError(w, r, http.StatusInternalServerError, "Something went wrong loading your playlists.")
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := errorData{Status: status, Title: http.StatusText(status), Message: message}
	if status != http.StatusInternalServerError {
		if playlists, err := h.store.ListPlaylists(r.Context()); err == nil {
			data.Playlists = playlists
		}
	}
	h.render(w, r, status, "error.html", data)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	var buf bytes.Buffer
	if err := h.templates[page].ExecuteTemplate(&buf, "base", data); err != nil {
		h.logger.Error("template failure", "request_id", server.RequestID(r.Context()), "page", page, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		h.logger.Debug("failed to write response", "err", err)
	}
}
