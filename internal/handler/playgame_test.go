package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
)

const testGameID = "0f8fad5b-d9cb-469f-a165-70867728950e"

func newPlayServer(t *testing.T) *chi.Mux {
	t.Helper()
	dir := t.TempDir()
	gameDir := filepath.Join(dir, testGameID)
	if err := os.MkdirAll(gameDir, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"index.html": "<html>game</html>",
		"game.js":    "console.log('hi')",
		".secret":    "do not serve",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(gameDir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	h := NewPlayGameHandler(dir)
	router := chi.NewRouter()
	router.Get("/play/{gameId}/*", h.Serve)
	return router
}

func TestPlayGameServe(t *testing.T) {
	router := newPlayServer(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"index by default", "/play/" + testGameID + "/", http.StatusOK},
		{"named file", "/play/" + testGameID + "/game.js", http.StatusOK},
		{"missing file", "/play/" + testGameID + "/nope.js", http.StatusNotFound},
		{"non-uuid id", "/play/not-a-uuid/index.html", http.StatusNotFound},
		{"hidden file", "/play/" + testGameID + "/.secret", http.StatusNotFound},
		{"traversal", "/play/" + testGameID + "/..%2f..%2fetc%2fpasswd", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.wantStatus)
			}
		})
	}
}
