package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/auth"
	"github.com/sakif/devconnector/internal/model"
)

// In-memory fakes of the repository interfaces. They hand out copies so a
// service mutating a returned value does not change stored state until it
// calls a write method.

type fakeUserRepo struct {
	users map[string]*model.User

	// set to simulate a database failure
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.Conflict("User already exists")
		}
	}
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("User not found")
	}
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NotFound("User not found")
}

func (f *fakeUserRepo) UpsertGitHub(ctx context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.GitHubID == user.GitHubID {
			u.Name = user.Name
			u.Avatar = user.Avatar
			*user = *u
			return nil
		}
	}
	return f.Create(ctx, user)
}

type fakeProfileRepo struct {
	byUser map[string]*model.Profile
	users  *fakeUserRepo

	writes  int
	listErr error
}

func newFakeProfileRepo(users *fakeUserRepo) *fakeProfileRepo {
	return &fakeProfileRepo{byUser: make(map[string]*model.Profile), users: users}
}

func cloneProfile(p *model.Profile) *model.Profile {
	out := *p
	out.Skills = slices.Clone(p.Skills)
	out.Experience = slices.Clone(p.Experience)
	out.Education = slices.Clone(p.Education)
	if p.User != nil {
		ref := *p.User
		out.User = &ref
	}
	return &out
}

func (f *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (*model.Profile, error) {
	p, ok := f.byUser[userID]
	if !ok {
		return nil, apperror.NotFound("There is no profile for this user")
	}
	out := cloneProfile(p)
	if u, ok := f.users.users[userID]; ok {
		out.User = &model.UserRef{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
	}
	return out, nil
}

func (f *fakeProfileRepo) List(ctx context.Context) ([]model.Profile, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.Profile{}
	for userID := range f.byUser {
		p, _ := f.GetByUserID(ctx, userID)
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProfileRepo) Create(_ context.Context, p *model.Profile) error {
	if _, ok := f.byUser[p.UserID]; ok {
		return apperror.Conflict("Profile already exists")
	}
	if _, ok := f.users.users[p.UserID]; !ok {
		return apperror.Unauthorized("Token is not valid")
	}
	f.writes++
	p.ID = xid.New().String()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.byUser[p.UserID] = cloneProfile(p)
	return nil
}

func (f *fakeProfileRepo) ApplyUpdate(_ context.Context, userID string, upd model.ProfileUpdate) error {
	p, ok := f.byUser[userID]
	if !ok {
		return apperror.NotFound("There is no profile for this user")
	}
	f.writes++
	upd.ApplyTo(p)
	p.UpdatedAt = time.Now()
	return nil
}

func (f *fakeProfileRepo) SaveEntries(_ context.Context, p *model.Profile) error {
	stored, ok := f.byUser[p.UserID]
	if !ok || stored.ID != p.ID {
		return apperror.NotFound("There is no profile for this user")
	}
	f.writes++
	stored.Experience = slices.Clone(p.Experience)
	stored.Education = slices.Clone(p.Education)
	return nil
}

type fakeAccountRepo struct {
	users    *fakeUserRepo
	profiles *fakeProfileRepo
	posts    *fakePostRepo
}

func (f *fakeAccountRepo) DeleteAccount(_ context.Context, userID string) error {
	if _, ok := f.users.users[userID]; !ok {
		return apperror.NotFound("User not found")
	}
	for id, p := range f.posts.posts {
		if p.UserID == userID {
			delete(f.posts.posts, id)
		}
	}
	delete(f.profiles.byUser, userID)
	delete(f.users.users, userID)
	return nil
}

type fakePostRepo struct {
	posts map[string]*model.Post
	order []string

	saveErr error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]*model.Post)}
}

func clonePost(p *model.Post) *model.Post {
	out := *p
	out.Likes = slices.Clone(p.Likes)
	out.Comments = slices.Clone(p.Comments)
	return &out
}

func (f *fakePostRepo) Create(_ context.Context, p *model.Post) error {
	p.ID = xid.New().String()
	p.CreatedAt = time.Now()
	f.posts[p.ID] = clonePost(p)
	f.order = append(f.order, p.ID)
	return nil
}

func (f *fakePostRepo) GetByID(_ context.Context, id string) (*model.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, apperror.NotFound("Post not found")
	}
	return clonePost(p), nil
}

func (f *fakePostRepo) List(_ context.Context) ([]model.Post, error) {
	out := []model.Post{}
	for i := len(f.order) - 1; i >= 0; i-- {
		if p, ok := f.posts[f.order[i]]; ok {
			out = append(out, *clonePost(p))
		}
	}
	return out, nil
}

func (f *fakePostRepo) SaveActivity(_ context.Context, p *model.Post) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	stored, ok := f.posts[p.ID]
	if !ok {
		return apperror.NotFound("Post not found")
	}
	stored.Likes = slices.Clone(p.Likes)
	stored.Comments = slices.Clone(p.Comments)
	return nil
}

func (f *fakePostRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.posts[id]; !ok {
		return apperror.NotFound("Post not found")
	}
	delete(f.posts, id)
	return nil
}

// testEnv wires every service to one shared set of fakes.
type testEnv struct {
	users    *fakeUserRepo
	profiles *fakeProfileRepo
	posts    *fakePostRepo

	auth    *AuthService
	profile *ProfileService
	post    *PostService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := newFakeUserRepo()
	profiles := newFakeProfileRepo(users)
	posts := newFakePostRepo()
	accounts := &fakeAccountRepo{users: users, profiles: profiles, posts: posts}

	return &testEnv{
		users:    users,
		profiles: profiles,
		posts:    posts,
		auth:     NewAuthService(users, tokens, auth.NewPasswordServiceForTest(4), logger),
		profile:  NewProfileService(profiles, accounts, logger),
		post:     NewPostService(posts, users, logger),
	}
}

// addUser stores a user directly, bypassing registration.
func (e *testEnv) addUser(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{
		Name:   name,
		Email:  fmt.Sprintf("%s@example.com", name),
		Avatar: "//www.gravatar.com/avatar/" + name,
	}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("addUser: %v", err)
	}
	return u
}
