package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sakif/jamstand/internal/apperror"
	"github.com/sakif/jamstand/internal/auth"
)

// DefaultHackatimeURL is the public coding-time tracker API.
const DefaultHackatimeURL = "https://hackatime.hackclub.com/api/v1"

// HackatimeHandler proxies project stats for the caller's linked Slack
// account. Proxying keeps the tracker's API shape out of the frontend
// and lets us swap or cache it later without a client change.
type HackatimeHandler struct {
	baseURL    string
	httpClient *http.Client
}

func NewHackatimeHandler(baseURL string) *HackatimeHandler {
	if baseURL == "" {
		baseURL = DefaultHackatimeURL
	}
	return &HackatimeHandler{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Projects handles GET /api/hackatimeProjects.
func (h *HackatimeHandler) Projects(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}
	slackID := r.URL.Query().Get("slackId")
	if slackID == "" {
		slackID = user.SlackID
	}
	if slackID == "" {
		writeError(w, apperror.ValidationFailed("slackId", "Connect your Slack account first"))
		return
	}

	statsURL := fmt.Sprintf("%s/users/%s/stats?features=projects", h.baseURL, url.PathEscape(slackID))
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, statsURL, nil)
	if err != nil {
		writeError(w, apperror.Upstream("building stats request", err))
		return
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		writeError(w, apperror.Upstream("fetching coding stats", err))
		return
	}
	defer resp.Body.Close()

	// Stats move slowly; let the CDN hold a page for five minutes.
	w.Header().Set("Cache-Control", "s-maxage=300, stale-while-revalidate=300")

	if resp.StatusCode == http.StatusNotFound {
		// No tracked time yet. An empty list keeps the frontend simple.
		writeJSON(w, http.StatusOK, map[string]any{"projects": []string{}})
		return
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		writeError(w, apperror.Upstream("fetching coding stats", fmt.Errorf("status %d: %s", resp.StatusCode, raw)))
		return
	}

	var stats struct {
		Data struct {
			Projects []struct {
				Name string `json:"name"`
			} `json:"projects"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		writeError(w, apperror.Upstream("decoding coding stats", err))
		return
	}

	names := make([]string, 0, len(stats.Data.Projects))
	for _, p := range stats.Data.Projects {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": names})
}
