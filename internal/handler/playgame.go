package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
)

var gameIDPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// PlayGameHandler serves uploaded builds at /play/{gameId}/*. It is the
// only handler that touches the filesystem on a public path, so the
// checks here are strict: ids must be UUIDs, paths must resolve inside
// the game's directory, and dotfiles are invisible.
type PlayGameHandler struct {
	gamesDir string
}

func NewPlayGameHandler(gamesDir string) *PlayGameHandler {
	return &PlayGameHandler{gamesDir: gamesDir}
}

// Serve handles GET /play/{gameId}/*.
func (h *PlayGameHandler) Serve(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameId")
	if !gameIDPattern.MatchString(gameID) {
		http.NotFound(w, r)
		return
	}

	rel := chi.URLParam(r, "*")
	if rel == "" {
		rel = "index.html"
	}
	for _, part := range strings.Split(rel, "/") {
		if part == ".." || strings.HasPrefix(part, ".") {
			http.NotFound(w, r)
			return
		}
	}

	gameDir, err := filepath.Abs(filepath.Join(h.gamesDir, gameID))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	target, err := filepath.Abs(filepath.Join(gameDir, filepath.FromSlash(rel)))
	if err != nil || !strings.HasPrefix(target, gameDir+string(os.PathSeparator)) {
		http.NotFound(w, r)
		return
	}

	info, err := os.Stat(target)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if info.IsDir() {
		target = filepath.Join(target, "index.html")
		if _, err := os.Stat(target); err != nil {
			http.NotFound(w, r)
			return
		}
	}

	http.ServeFile(w, r, target)
}
