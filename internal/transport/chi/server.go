// Package chi is the HTTP transport. Handlers validate inputs, dispatch
// to the use case services, and map domain errors to status codes.
package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lumakr/luma/internal/domain"
	mediauc "github.com/lumakr/luma/internal/usecase/media"
	projectuc "github.com/lumakr/luma/internal/usecase/project"
	searchuc "github.com/lumakr/luma/internal/usecase/search"
)

const (
	maxKeywordLen = 100
	maxSlugLen    = 100
)

// imageFormats and videoFormats partition the servable media formats.
// Anything else is stored but never served raw.
var (
	imageFormats = map[string]bool{
		"png": true, "jpg": true, "jpeg": true, "gif": true,
		"webp": true, "svg": true, "bmp": true, "ico": true,
	}
	videoFormats = map[string]bool{
		"mp4": true, "webm": true, "ogg": true,
	}
)

// Pinger reports backend connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the use case services behind the HTTP API.
type Server struct {
	project *projectuc.Service
	media   *mediauc.Service
	search  *searchuc.Service
	docs    Pinger
	index   Pinger
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	project *projectuc.Service,
	media *mediauc.Service,
	search *searchuc.Service,
	docs Pinger,
	index Pinger,
	logger *zap.Logger,
) *Server {
	return &Server{
		project: project,
		media:   media,
		search:  search,
		docs:    docs,
		index:   index,
		logger:  logger,
	}
}

// Register mounts every route on the router.
func (s *Server) Register(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/media/{id}", s.GetMedia)
		r.Get("/photo", s.GetPhoto)
		r.Get("/video", s.GetVideo)
		r.Get("/building", s.GetBuilding)
		r.Get("/buildingurl", s.GetBuildingBySlug)
		r.Get("/buildings", s.ListBuildings)
		r.Get("/random", s.RandomBuildings)
		r.Get("/search", s.Search)
		r.Get("/autocomplete", s.Autocomplete)
	})
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// GetMedia handles GET /api/v1/media/{id}. Images are written whole;
// videos go through http.ServeContent for range semantics.
func (s *Server) GetMedia(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !isHexID(id) {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid id")
		return
	}

	data, format, err := s.media.Retrieve(r.Context(), domain.Handle(id))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	switch {
	case imageFormats[format]:
		w.Header().Set("Content-Type", "image/"+format)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	case videoFormats[format]:
		w.Header().Set("Content-Type", "video/"+format)
		http.ServeContent(w, r, id+"."+format, time.Time{}, bytes.NewReader(data))
	default:
		writeError(w, http.StatusNotFound, "not_found", "Media format not supported")
	}
}

// GetPhoto handles GET /api/v1/photo?photo_id=&language=.
func (s *Server) GetPhoto(w http.ResponseWriter, r *http.Request) {
	lang, ok := s.requireLanguage(w, r)
	if !ok {
		return
	}
	id, ok := s.requireHexID(w, r, "photo_id")
	if !ok {
		return
	}

	item, err := s.project.MediaItem(r.Context(), id, lang)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// GetVideo handles GET /api/v1/video?video_id=&language=.
func (s *Server) GetVideo(w http.ResponseWriter, r *http.Request) {
	lang, ok := s.requireLanguage(w, r)
	if !ok {
		return
	}
	id, ok := s.requireHexID(w, r, "video_id")
	if !ok {
		return
	}

	group, err := s.project.MediaGroup(r.Context(), id, lang)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// GetBuilding handles GET /api/v1/building?building_id=&language=.
func (s *Server) GetBuilding(w http.ResponseWriter, r *http.Request) {
	lang, ok := s.requireLanguage(w, r)
	if !ok {
		return
	}
	id, ok := s.requireHexID(w, r, "building_id")
	if !ok {
		return
	}

	rec, err := s.project.Record(r.Context(), id, lang)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GetBuildingBySlug handles GET /api/v1/buildingurl?building_name=&language=.
func (s *Server) GetBuildingBySlug(w http.ResponseWriter, r *http.Request) {
	lang, ok := s.requireLanguage(w, r)
	if !ok {
		return
	}
	slug := r.URL.Query().Get("building_name")
	if slug == "" || len(slug) > maxSlugLen {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid building name")
		return
	}

	rec, err := s.project.RecordBySlug(r.Context(), slug, lang)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ListBuildings handles GET /api/v1/buildings?palace_id=&language=.
func (s *Server) ListBuildings(w http.ResponseWriter, r *http.Request) {
	lang, ok := s.requireLanguage(w, r)
	if !ok {
		return
	}
	palace, err := parsePalaceID(r.URL.Query().Get("palace_id"))
	if err != nil || palace == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid palace id")
		return
	}

	members, err := s.project.GroupMembers(r.Context(), palace, lang)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if len(members) == 0 {
		writeError(w, http.StatusNotFound, "not_found", "No palace elements found")
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// RandomBuildings handles GET /api/v1/random?language=&palace_id=.
// Without a palace filter it returns a random sample; with one it
// returns the whole palace in tour order.
func (s *Server) RandomBuildings(w http.ResponseWriter, r *http.Request) {
	lang, ok := s.requireLanguage(w, r)
	if !ok {
		return
	}
	palace, err := parsePalaceID(r.URL.Query().Get("palace_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid palace id")
		return
	}

	previews, err := s.project.Sample(r.Context(), lang, palace, 0)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if len(previews) == 0 {
		writeError(w, http.StatusNotFound, "not_found", "No article found")
		return
	}
	writeJSON(w, http.StatusOK, previews)
}

// searchResponse mirrors the shape clients already consume.
type searchResponse struct {
	Hits     int             `json:"hits"`
	Articles []searchArticle `json:"articles"`
}

type searchArticle struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Search handles GET /api/v1/search?keyword=&language=&palace_id=&cursor=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	lang, ok := s.requireLanguage(w, r)
	if !ok {
		return
	}
	keyword, ok := s.requireKeyword(w, r)
	if !ok {
		return
	}
	palace, err := parsePalaceID(r.URL.Query().Get("palace_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid palace id")
		return
	}
	cursor, _ := strconv.Atoi(r.URL.Query().Get("cursor"))

	page, err := s.search.Search(r.Context(), keyword, lang, palace, cursor, 0)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	articles := make([]searchArticle, 0, len(page.Hits))
	for _, hit := range page.Hits {
		articles = append(articles, searchArticle{ID: hit.ID, Title: hit.Title, Text: hit.Body})
	}
	writeJSON(w, http.StatusOK, searchResponse{Hits: page.Total, Articles: articles})
}

// Autocomplete handles GET /api/v1/autocomplete?keyword=&language=.
func (s *Server) Autocomplete(w http.ResponseWriter, r *http.Request) {
	lang, ok := s.requireLanguage(w, r)
	if !ok {
		return
	}
	keyword, ok := s.requireKeyword(w, r)
	if !ok {
		return
	}

	suggestions, err := s.search.Autocomplete(r.Context(), keyword, lang)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": suggestions})
}

// HealthCheck handles GET /healthz. Pings both backends.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"mongo": "ok", "redis": "ok"}
	status := http.StatusOK

	if err := s.docs.Ping(r.Context()); err != nil {
		checks["mongo"] = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	if err := s.index.Ping(r.Context()); err != nil {
		checks["redis"] = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	writeJSON(w, status, map[string]any{"status": overall, "checks": checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- Validation helpers ---

func (s *Server) requireLanguage(w http.ResponseWriter, r *http.Request) (domain.Language, bool) {
	raw := r.URL.Query().Get("language")
	lang, ok := domain.ParseLanguage(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid language: "+raw)
		return "", false
	}
	return lang, true
}

func (s *Server) requireHexID(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	id := r.URL.Query().Get(param)
	if !isHexID(id) {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid id")
		return "", false
	}
	return id, true
}

func (s *Server) requireKeyword(w http.ResponseWriter, r *http.Request) (string, bool) {
	keyword := r.URL.Query().Get("keyword")
	if strings.TrimSpace(keyword) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid keyword")
		return "", false
	}
	if len([]rune(keyword)) > maxKeywordLen {
		writeError(w, http.StatusBadRequest, "bad_request", "Search keyword too long")
		return "", false
	}
	return keyword, true
}

// parsePalaceID parses an optional palace filter. Empty and "0" mean no
// filter; anything else must be a number in [1,5].
func parsePalaceID(raw string) (int, error) {
	if raw == "" || raw == "0" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 5 {
		return 0, errors.New("palace id out of range")
	}
	return n, nil
}

// isHexID reports whether s looks like a stored object id.
func isHexID(s string) bool {
	if len(s) != 24 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// --- Error mapping ---

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound),
		errors.Is(err, domain.ErrMediaNotFound),
		errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
