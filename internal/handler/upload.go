package handler

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sakif/jamstand/internal/apperror"
	"github.com/sakif/jamstand/internal/auth"
)

// maxBuildSize caps an uploaded game build zip at 100MB.
const maxBuildSize = 100 << 20

// allowedBuildExtensions is everything a web-exported game build may
// contain. Anything else in the zip fails the whole upload, so a build
// can't smuggle in server-side scripts or executables.
var allowedBuildExtensions = map[string]bool{
	".html": true, ".js": true, ".css": true, ".json": true, ".txt": true,
	".wasm": true, ".data": true, ".mem": true, ".map": true, ".xml": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".webp": true, ".ico": true, ".bmp": true,
	".mp3": true, ".ogg": true, ".wav": true, ".m4a": true,
	".mp4": true, ".webm": true,
	".ttf": true, ".otf": true, ".woff": true, ".woff2": true, ".eot": true,
	".glb": true, ".gltf": true, ".bin": true, ".pck": true,
	".unityweb": true, ".br": true, ".gz": true,
}

// UploadHandler receives zipped web builds and unpacks them for hosting
// under /play/{gameId}/. It also serves the admin-only build removal
// endpoint.
type UploadHandler struct {
	gamesDir   string
	adminToken string
	logger     *slog.Logger
}

func NewUploadHandler(gamesDir, adminToken string, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{gamesDir: gamesDir, adminToken: adminToken, logger: logger}
}

// Upload handles POST /api/gameUpload.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBuildSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, apperror.ValidationFailed("file", "Upload must be a zip under 100MB"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperror.ValidationFailed("file", "A zip file is required"))
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".zip") {
		writeError(w, apperror.ValidationFailed("file", "Only .zip uploads are accepted"))
		return
	}

	// Spool to disk so archive/zip can seek.
	tmp, err := os.CreateTemp("", "build-*.zip")
	if err != nil {
		writeError(w, apperror.Upstream("spooling upload", err))
		return
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	size, err := io.Copy(tmp, file)
	if err != nil {
		writeError(w, apperror.Upstream("spooling upload", err))
		return
	}

	gameID := uuid.NewString()
	destDir := filepath.Join(h.gamesDir, gameID)
	if err := h.extract(tmp.Name(), size, destDir); err != nil {
		os.RemoveAll(destDir)
		writeError(w, err)
		return
	}

	h.logger.Info("game build uploaded", "game_id", gameID, "user_id", user.ID, "bytes", size)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"gameId":  gameID,
		"playUrl": fmt.Sprintf("/play/%s/", gameID),
	})
}

// Remove handles GET /removeGame/{gameId}. Moderation tooling calls it
// with the shared admin token; it is not reachable with a user session.
func (h *UploadHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if h.adminToken == "" || r.Header.Get("Authorization") != h.adminToken {
		writeError(w, apperror.Unauthorized("Unauthorized"))
		return
	}
	gameID := chi.URLParam(r, "gameId")
	if !gameIDPattern.MatchString(gameID) {
		writeError(w, apperror.ValidationFailed("gameId", "A valid game id is required"))
		return
	}

	if err := os.RemoveAll(filepath.Join(h.gamesDir, gameID)); err != nil {
		writeError(w, apperror.Upstream("removing game build", err))
		return
	}
	h.logger.Info("game build removed", "game_id", gameID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *UploadHandler) extract(zipPath string, size int64, destDir string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return apperror.ValidationFailed("file", "Upload is not a valid zip archive")
	}
	defer reader.Close()

	destAbs, err := filepath.Abs(destDir)
	if err != nil {
		return apperror.Upstream("resolving destination", err)
	}
	if err := os.MkdirAll(destAbs, 0o755); err != nil {
		return apperror.Upstream("creating game directory", err)
	}

	for _, entry := range reader.File {
		name := entry.Name
		if strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(filepath.Base(name), "._") {
			continue
		}
		if entry.FileInfo().IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(name))
		if !allowedBuildExtensions[ext] {
			return apperror.ValidationFailed("file", fmt.Sprintf("File type %q is not allowed in a build", ext))
		}

		// Zip-slip guard: the resolved target must stay inside destDir.
		target := filepath.Join(destAbs, filepath.FromSlash(name))
		targetAbs, err := filepath.Abs(target)
		if err != nil || !strings.HasPrefix(targetAbs, destAbs+string(os.PathSeparator)) {
			return apperror.ValidationFailed("file", "Archive contains an invalid path")
		}

		if err := h.writeEntry(entry, targetAbs); err != nil {
			return err
		}
	}
	return nil
}

func (h *UploadHandler) writeEntry(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return apperror.Upstream("creating build directory", err)
	}
	src, err := entry.Open()
	if err != nil {
		return apperror.ValidationFailed("file", "Archive entry could not be read")
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return apperror.Upstream("writing build file", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, maxBuildSize)); err != nil {
		return apperror.Upstream("writing build file", err)
	}
	return nil
}
