package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sakif/jamstand/internal/auth"
	"github.com/sakif/jamstand/internal/model"
	"github.com/sakif/jamstand/internal/service"
)

// Minimal repo stubs for driving the handlers through real services.

type stubRSVPRepo struct {
	rsvps []model.RSVP
}

func (s *stubRSVPRepo) FindByUserAndEvent(_ context.Context, _, _ string) (*model.RSVP, error) {
	return nil, nil
}

func (s *stubRSVPRepo) ListByUser(_ context.Context, _ string) ([]model.RSVP, error) {
	return s.rsvps, nil
}

func (s *stubRSVPRepo) Create(_ context.Context, rsvp *model.RSVP) (*model.RSVP, error) {
	r := *rsvp
	r.RecordID = "recR001"
	return &r, nil
}

type stubPlayRepo struct{}

func (s *stubPlayRepo) Create(_ context.Context, play *model.Play) (*model.Play, error) {
	p := *play
	p.RecordID = "recPL001"
	return &p, nil
}

type stubGameRepo struct {
	game *model.Game
}

func (s *stubGameRepo) GetByID(_ context.Context, _ string) (*model.Game, error) {
	return s.game, nil
}
func (s *stubGameRepo) ListByOwner(_ context.Context, _ string) ([]model.Game, error) {
	return nil, nil
}
func (s *stubGameRepo) FindByName(_ context.Context, _ string) (*model.Game, error) {
	return s.game, nil
}
func (s *stubGameRepo) Create(_ context.Context, game *model.Game) (*model.Game, error) {
	return game, nil
}
func (s *stubGameRepo) Update(_ context.Context, _ string, _ model.GameUpdate) (*model.Game, error) {
	return s.game, nil
}
func (s *stubGameRepo) Delete(_ context.Context, _ string) error { return nil }
func (s *stubGameRepo) AttachThumbnail(_ context.Context, _ string, _ model.AttachmentUpload) (*model.Game, error) {
	return s.game, nil
}
func (s *stubGameRepo) FetchPosts(_ context.Context, _ []string) ([]model.Post, error) {
	return nil, nil
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := auth.ContextWithUser(req.Context(), userFixture())
	return req.WithContext(ctx)
}

func TestCreateRSVPResponse(t *testing.T) {
	svc := service.NewRSVPService(&stubRSVPRepo{}, testLogger())
	h := NewRSVPHandler(svc, nil)

	req := authedRequest(http.MethodPost, "/api/CreateRSVP", `{"event":"summer-jam"}`)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		OK   bool       `json:"ok"`
		RSVP model.RSVP `json:"rsvp"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.OK || resp.RSVP.Event != "summer-jam" {
		t.Errorf("body = %+v, want ok with the created rsvp", resp)
	}
}

func TestListRSVPsResponse(t *testing.T) {
	repo := &stubRSVPRepo{rsvps: []model.RSVP{{RecordID: "recR001", Event: "summer-jam"}}}
	h := NewRSVPHandler(service.NewRSVPService(repo, testLogger()), nil)

	req := authedRequest(http.MethodPost, "/api/GetRSVPs", "")
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		OK    bool         `json:"ok"`
		RSVPs []model.RSVP `json:"rsvps"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.OK || len(resp.RSVPs) != 1 {
		t.Errorf("body = %+v, want ok with 1 rsvp", resp)
	}
}

func TestCreatePlayResponse(t *testing.T) {
	games := &stubGameRepo{game: &model.Game{ID: "recG001", Name: "Moon Lander"}}
	plays := service.NewPlayService(&stubPlayRepo{}, games, testLogger())
	h := NewRSVPHandler(nil, plays)

	req := authedRequest(http.MethodPost, "/api/CreatePlay", `{"gameName":"Moon Lander"}`)
	rec := httptest.NewRecorder()
	h.CreatePlay(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		OK   bool       `json:"ok"`
		Play model.Play `json:"play"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.OK || resp.Play.GameID != "recG001" {
		t.Errorf("body = %+v, want ok with the recorded play", resp)
	}
}
