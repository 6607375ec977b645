package handler

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/sakif/jamstand/internal/apperror"
	"github.com/sakif/jamstand/internal/auth"
	"github.com/sakif/jamstand/internal/service"
)

// SlackHandler runs the connect-your-Slack popup flow. Start requires a
// bearer token; Callback is hit by a browser redirect, so the user's
// identity travels in the signed state parameter instead.
type SlackHandler struct {
	provider *auth.SlackProvider
	signer   *auth.StateSigner
	users    *service.UserService
}

func NewSlackHandler(provider *auth.SlackProvider, signer *auth.StateSigner, users *service.UserService) *SlackHandler {
	return &SlackHandler{provider: provider, signer: signer, users: users}
}

// Start handles GET /api/slack/oauthStart.
func (h *SlackHandler) Start(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Authentication required"))
		return
	}
	if !h.provider.Configured() {
		writeError(w, apperror.Upstream("slack oauth", fmt.Errorf("client credentials not configured")))
		return
	}

	state, err := h.signer.Sign(user.ID)
	if err != nil {
		writeError(w, apperror.Upstream("signing oauth state", err))
		return
	}
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// callbackPage notifies the opener window and closes the popup. The
// member id passes through a JS string literal, hence the template.
var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<body>
<script>
  if (window.opener) {
    window.opener.postMessage({ type: 'SLACK_CONNECTED', slackId: {{.SlackID}} }, '*');
  }
  window.close();
</script>
<p>Slack connected. You can close this window.</p>
</body>
</html>`))

// Callback handles GET /api/slack/oauthCallback.
func (h *SlackHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		writeError(w, apperror.Forbidden("Slack authorization was denied"))
		return
	}
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		writeError(w, apperror.ValidationFailed("code", "Missing code or state"))
		return
	}

	userID, err := h.signer.Verify(state)
	if err != nil {
		writeError(w, apperror.Unauthorized("Invalid or expired state"))
		return
	}

	slackID, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		writeError(w, apperror.Upstream("exchanging slack code", err))
		return
	}

	if err := h.users.ConnectSlack(r.Context(), userID, slackID); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := callbackPage.Execute(w, map[string]string{"SlackID": slackID}); err != nil {
		// Headers already sent; nothing left to do but note it.
		return
	}
}
