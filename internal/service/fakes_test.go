package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sakif/jamstand/internal/model"
)

// In-memory repository fakes. They hold slices under a mutex so tests
// exercising the fire-and-forget email path stay race-free.

type fakeUserRepo struct {
	mu      sync.Mutex
	users   []model.User
	nextID  int
	failAll bool
}

func (f *fakeUserRepo) add(u model.User) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		f.nextID++
		u.ID = fmt.Sprintf("recU%03d", f.nextID)
	}
	f.users = append(f.users, u)
	return &u
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if f.failAll {
		return nil, fmt.Errorf("store down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].Email == email {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByToken(_ context.Context, token string) (*model.User, error) {
	if f.failAll {
		return nil, fmt.Errorf("store down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].Token == token {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindAllByEmail(_ context.Context, email string) ([]model.User, error) {
	if f.failAll {
		return nil, fmt.Errorf("store down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for i := range f.users {
		if f.users[i].Email == email {
			out = append(out, f.users[i])
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Create(_ context.Context, email string) (*model.User, error) {
	if f.failAll {
		return nil, fmt.Errorf("store down")
	}
	return f.add(model.User{Email: email, CreatedAt: time.Now()}), nil
}

func (f *fakeUserRepo) patch(id string, apply func(*model.User)) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID == id {
			apply(&f.users[i])
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, fmt.Errorf("no user %s", id)
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, id string, update model.ProfileUpdate) (*model.User, error) {
	return f.patch(id, func(u *model.User) {
		if update.FirstName != nil {
			u.FirstName = *update.FirstName
		}
		if update.LastName != nil {
			u.LastName = *update.LastName
		}
		if update.Birthday != nil {
			u.Birthday = *update.Birthday
		}
		if update.City != nil {
			u.Address.City = *update.City
		}
	})
}

func (f *fakeUserRepo) SetToken(_ context.Context, id, token string) (*model.User, error) {
	return f.patch(id, func(u *model.User) { u.Token = token })
}

func (f *fakeUserRepo) SetReferralCode(_ context.Context, id, code string) (*model.User, error) {
	return f.patch(id, func(u *model.User) { u.ReferralCode = code })
}

func (f *fakeUserRepo) SetOnboarded(_ context.Context, id string) (*model.User, error) {
	return f.patch(id, func(u *model.User) { u.HasOnboarded = true })
}

func (f *fakeUserRepo) SetSlackID(_ context.Context, id, slackID string) (*model.User, error) {
	return f.patch(id, func(u *model.User) { u.SlackID = slackID })
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no user %s", id)
}

func (f *fakeUserRepo) ReferralCodeTaken(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ReferralCode == code {
			return true, nil
		}
	}
	return false, nil
}

type fakeOTPRepo struct {
	mu    sync.Mutex
	codes []model.OneTimeCode
	now   func() time.Time
}

func (f *fakeOTPRepo) Create(_ context.Context, email, code, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes = append(f.codes, model.OneTimeCode{
		ID:        fmt.Sprintf("recO%03d", len(f.codes)+1),
		Email:     email,
		Code:      code,
		Token:     token,
		CreatedAt: f.clock(),
	})
	return nil
}

func (f *fakeOTPRepo) LatestValid(_ context.Context, email string, windowMinutes int) (*model.OneTimeCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := f.clock().Add(-time.Duration(windowMinutes) * time.Minute)
	var newest *model.OneTimeCode
	for i := range f.codes {
		c := f.codes[i]
		if c.Email != email || !c.CreatedAt.After(cutoff) {
			continue
		}
		if newest == nil || c.CreatedAt.After(newest.CreatedAt) {
			newest = &f.codes[i]
		}
	}
	if newest == nil {
		return nil, nil
	}
	out := *newest
	return &out, nil
}

func (f *fakeOTPRepo) clock() time.Time {
	if f.now != nil {
		return f.now()
	}
	return time.Now()
}

type fakeGameRepo struct {
	mu     sync.Mutex
	games  []model.Game
	posts  []model.Post
	nextID int
}

func (f *fakeGameRepo) add(g model.Game) *model.Game {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g.ID == "" {
		f.nextID++
		g.ID = fmt.Sprintf("recG%03d", f.nextID)
	}
	f.games = append(f.games, g)
	return &g
}

func (f *fakeGameRepo) GetByID(_ context.Context, id string) (*model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.games {
		if f.games[i].ID == id {
			g := f.games[i]
			return &g, nil
		}
	}
	return nil, nil
}

func (f *fakeGameRepo) ListByOwner(_ context.Context, userID string) ([]model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Game
	for i := range f.games {
		for _, owner := range f.games[i].OwnerIDs {
			if owner == userID {
				out = append(out, f.games[i])
			}
		}
	}
	return out, nil
}

func (f *fakeGameRepo) FindByName(_ context.Context, name string) (*model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.games {
		if f.games[i].Name == name {
			g := f.games[i]
			return &g, nil
		}
	}
	return nil, nil
}

func (f *fakeGameRepo) Create(_ context.Context, game *model.Game) (*model.Game, error) {
	return f.add(*game), nil
}

func (f *fakeGameRepo) Update(_ context.Context, id string, update model.GameUpdate) (*model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.games {
		if f.games[i].ID != id {
			continue
		}
		if update.Name != nil {
			f.games[i].Name = *update.Name
		}
		if update.Description != nil {
			f.games[i].Description = *update.Description
		}
		if update.GitHubURL != nil {
			f.games[i].GitHubURL = *update.GitHubURL
		}
		if update.ThumbnailURL != nil {
			f.games[i].ThumbnailURL = *update.ThumbnailURL
		}
		g := f.games[i]
		return &g, nil
	}
	return nil, fmt.Errorf("no game %s", id)
}

func (f *fakeGameRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.games {
		if f.games[i].ID == id {
			f.games = append(f.games[:i], f.games[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no game %s", id)
}

func (f *fakeGameRepo) AttachThumbnail(_ context.Context, id string, up model.AttachmentUpload) (*model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.games {
		if f.games[i].ID == id {
			f.games[i].ThumbnailURL = "https://cdn.example/" + up.Filename
			g := f.games[i]
			return &g, nil
		}
	}
	return nil, fmt.Errorf("no game %s", id)
}

func (f *fakeGameRepo) FetchPosts(_ context.Context, postIDs []string) ([]model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[string]bool{}
	for _, id := range postIDs {
		want[id] = true
	}
	var out []model.Post
	for i := range f.posts {
		if want[f.posts[i].ID] {
			out = append(out, f.posts[i])
		}
	}
	return out, nil
}

type fakePostRepo struct {
	mu          sync.Mutex
	posts       []model.Post
	games       map[string]model.Game
	users       map[string]model.User
	nextID      int
	uploads     []model.AttachmentUpload
	failUploads bool
}

func (f *fakePostRepo) GetByID(_ context.Context, id string) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.posts {
		if f.posts[i].ID == id {
			p := f.posts[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakePostRepo) ListAll(_ context.Context, limit int) ([]model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]model.Post(nil), f.posts...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePostRepo) AddAttachment(_ context.Context, postID string, up model.AttachmentUpload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUploads {
		return fmt.Errorf("upload rejected")
	}
	for i := range f.posts {
		if f.posts[i].ID == postID {
			f.posts[i].Attachments = append(f.posts[i].Attachments, model.Attachment{
				Filename:    up.Filename,
				ContentType: up.ContentType,
			})
			f.uploads = append(f.uploads, up)
			return nil
		}
	}
	return fmt.Errorf("no post %s", postID)
}

func (f *fakePostRepo) Create(_ context.Context, post *model.Post) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := *post
	f.nextID++
	p.ID = fmt.Sprintf("recP%03d", f.nextID)
	p.CreatedAt = time.Now()
	f.posts = append(f.posts, p)
	return &p, nil
}

func (f *fakePostRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.posts {
		if f.posts[i].ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no post %s", id)
}

func (f *fakePostRepo) FetchGames(_ context.Context, gameIDs []string) (map[string]model.Game, error) {
	out := map[string]model.Game{}
	for _, id := range gameIDs {
		if g, ok := f.games[id]; ok {
			out[id] = g
		}
	}
	return out, nil
}

func (f *fakePostRepo) FetchUsers(_ context.Context, userIDs []string) (map[string]model.User, error) {
	out := map[string]model.User{}
	for _, id := range userIDs {
		if u, ok := f.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

type fakeRSVPRepo struct {
	mu    sync.Mutex
	rsvps []model.RSVP
}

func (f *fakeRSVPRepo) FindByUserAndEvent(_ context.Context, userID, event string) (*model.RSVP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rsvps {
		if f.rsvps[i].UserID == userID && f.rsvps[i].Event == event {
			r := f.rsvps[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeRSVPRepo) ListByUser(_ context.Context, userID string) ([]model.RSVP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.RSVP
	for i := range f.rsvps {
		if f.rsvps[i].UserID == userID {
			out = append(out, f.rsvps[i])
		}
	}
	return out, nil
}

func (f *fakeRSVPRepo) Create(_ context.Context, rsvp *model.RSVP) (*model.RSVP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := *rsvp
	r.RecordID = fmt.Sprintf("recR%03d", len(f.rsvps)+1)
	f.rsvps = append(f.rsvps, r)
	return &r, nil
}

type fakePlayRepo struct {
	mu    sync.Mutex
	plays []model.Play
}

func (f *fakePlayRepo) Create(_ context.Context, play *model.Play) (*model.Play, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := *play
	p.RecordID = fmt.Sprintf("recPl%03d", len(f.plays)+1)
	f.plays = append(f.plays, p)
	return &p, nil
}

type historyRow struct {
	userID  string
	gameID  string
	codeURL string
}

type fakeHistoryRepo struct {
	mu   sync.Mutex
	rows []historyRow
	fail bool
}

func (f *fakeHistoryRepo) CreateSubmission(_ context.Context, userID, gameID, codeURL string) (string, error) {
	if f.fail {
		return "", fmt.Errorf("store down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, historyRow{userID: userID, gameID: gameID, codeURL: codeURL})
	return fmt.Sprintf("recH%03d", len(f.rows)), nil
}

func modelUser(email, token string) model.User {
	return model.User{Email: email, Token: token, CreatedAt: time.Now()}
}

// fakeSender records sent codes.
type fakeSender struct {
	mu   sync.Mutex
	sent []string // "email:code"
}

func (f *fakeSender) SendOTP(_ context.Context, to, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to+":"+code)
	return nil
}
