package api

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"strconv"
	"time"

	shoterrors "github.com/bryanchriswhite/WindowShot/internal/errors"
	"github.com/bryanchriswhite/WindowShot/internal/logger"
	"github.com/bryanchriswhite/WindowShot/internal/session"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/image/draw"
)

// ListenHost is the only interface the server binds to. The API drives the
// desktop and hands out screen contents, so it is never exposed remotely.
const ListenHost = "127.0.0.1"

const (
	defaultThumbWidth = 320
	maxThumbWidth     = 1024
)

// Server represents the HTTP API server
type Server struct {
	router   *mux.Router
	ctrl     *session.Controller
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// NewServer creates a new API server over a capture session
func NewServer(ctrl *session.Controller) *Server {
	s := &Server{
		router: mux.NewRouter(),
		ctrl:   ctrl,
		upgrader: websocket.Upgrader{
			CheckOrigin: sameOrigin,
		},
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Window directory
	api.HandleFunc("/windows", s.handleGetWindows).Methods("GET")
	api.HandleFunc("/windows/refresh", s.handleRefreshWindows).Methods("POST")
	api.HandleFunc("/selection", s.handleSetSelection).Methods("PUT")

	// Capture
	api.HandleFunc("/capture", s.handleCapture).Methods("POST")
	api.HandleFunc("/auto/toggle", s.handleToggleAuto).Methods("POST")
	api.HandleFunc("/captures/latest/thumbnail", s.handleLatestThumbnail).Methods("GET")

	// Status
	api.HandleFunc("/status", s.handleGetStatus).Methods("GET")
	api.HandleFunc("/status/stream", s.handleStatusStream)

	// Save directory
	api.HandleFunc("/save-dir", s.handleGetSaveDir).Methods("GET")
	api.HandleFunc("/save-dir", s.handleSetSaveDir).Methods("PUT")
	api.HandleFunc("/open-folder", s.handleOpenFolder).Methods("POST")

	// Health check
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
}

// Handler returns the router behind the same-origin guard
func (s *Server) Handler() http.Handler {
	return s.rejectCrossOrigin(s.router)
}

// Start serves on port until Shutdown is called
func (s *Server) Start(port int) error {
	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", ListenHost, port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.WithComponent("api").Info().Str("host", ListenHost).Int("port", port).Msg("Starting HTTP server")
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// rejectCrossOrigin refuses browser requests issued by pages of another
// origin. Requests without an Origin header (curl, scripts) pass.
func (s *Server) rejectCrossOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sameOrigin(r) {
			origin := r.Header.Get("Origin")
			logger.WithComponent("api").Warn().
				Str("origin", origin).
				Str("path", r.URL.Path).
				Msg("Rejected cross-origin request")
			writeError(w, shoterrors.NewCrossOrigin(origin))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sameOrigin reports whether the request's Origin, if any, names this host
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithComponent("api").Debug().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, shoterrors.StatusOf(err), map[string]string{
		"code":  string(shoterrors.CodeOf(err)),
		"error": err.Error(),
	})
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return shoterrors.NewInvalidRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// HTTP Handlers

type windowsResponse struct {
	Windows  interface{} `json:"windows"`
	Selected string      `json:"selected"`
}

func (s *Server) handleGetWindows(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, windowsResponse{
		Windows:  s.ctrl.Windows(),
		Selected: s.ctrl.Selected(),
	})
}

func (s *Server) handleRefreshWindows(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Refresh()
	s.handleGetWindows(w, r)
}

func (s *Server) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.ctrl.Select(req.Title); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"selected": s.ctrl.Selected()})
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	title := req.Title
	if title == "" {
		title = s.ctrl.Selected()
	}

	saved, err := s.ctrl.CaptureOnce(r.Context(), title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleToggleAuto(w http.ResponseWriter, r *http.Request) {
	on := s.ctrl.ToggleAuto()
	writeJSON(w, http.StatusOK, map[string]bool{"auto_capturing": on})
}

type statusResponse struct {
	session.Status
	AutoCapturing bool   `json:"auto_capturing"`
	SaveDir       string `json:"save_dir"`
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:        s.ctrl.Status(),
		AutoCapturing: s.ctrl.AutoCapturing(),
		SaveDir:       s.ctrl.SaveDir(),
	})
}

func (s *Server) handleStatusStream(w http.ResponseWriter, r *http.Request) {
	log := logger.WithComponent("api")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}
	defer conn.Close()

	updates := s.ctrl.Subscribe()
	defer s.ctrl.Unsubscribe(updates)

	// Drain client frames so a closed socket ends the stream
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(s.ctrl.Status()); err != nil {
		log.Debug().Err(err).Msg("WebSocket write error")
		return
	}

	for {
		select {
		case st, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(st); err != nil {
				log.Debug().Err(err).Msg("WebSocket write error")
				return
			}
		case <-gone:
			return
		}
	}
}

func (s *Server) handleGetSaveDir(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"dir": s.ctrl.SaveDir()})
}

func (s *Server) handleSetSaveDir(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Dir string `json:"dir"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.ctrl.SetSaveDir(req.Dir); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"dir": s.ctrl.SaveDir()})
}

func (s *Server) handleOpenFolder(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.OpenFolder(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleLatestThumbnail(w http.ResponseWriter, r *http.Request) {
	saved, ok := s.ctrl.LastSaved()
	if !ok {
		http.NotFound(w, r)
		return
	}

	width := defaultThumbWidth
	if v := r.URL.Query().Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxThumbWidth {
			writeError(w, shoterrors.NewInvalidRequest(fmt.Sprintf("invalid width: %s", v)))
			return
		}
		width = n
	}

	f, err := s.ctrl.Store().Fs().Open(saved.Path)
	if err != nil {
		// The file may have been moved or deleted since it was saved
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	src, err := png.Decode(f)
	if err != nil {
		writeError(w, fmt.Errorf("failed to decode %s: %w", saved.Name, err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := png.Encode(w, Thumbnail(src, width)); err != nil {
		logger.WithComponent("api").Debug().Err(err).Msg("Failed to write thumbnail")
	}
}

// Thumbnail scales src to width pixels wide, preserving aspect ratio. Images
// already narrower than width are returned unchanged.
func Thumbnail(src image.Image, width int) image.Image {
	b := src.Bounds()
	if b.Dx() <= width {
		return src
	}

	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}
