// Package storetest provides in-memory stores for tests.
package storetest

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"postboard/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// clock hands out strictly increasing millisecond timestamps so newest-first
// ordering is deterministic.
type clock struct {
	mu   sync.Mutex
	last time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := time.Now().UTC().Truncate(time.Millisecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Millisecond)
	}
	c.last = t
	return t
}

type Posts struct {
	mu    sync.Mutex
	clock clock
	docs  map[primitive.ObjectID]models.Post

	// SaveErr, when set, is returned by Save without writing.
	SaveErr error
}

func NewPosts() *Posts {
	return &Posts{docs: make(map[primitive.ObjectID]models.Post)}
}

func (s *Posts) Create(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Likes == nil {
		post.Likes = models.LikeSet{}
	}
	ts := s.clock.now()
	post.CreatedAt, post.UpdatedAt = ts, ts
	s.docs[post.ID] = clonePost(*post)
	return nil
}

func (s *Posts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.docs[id]
	if !ok {
		return nil, models.NewNotFoundError("Post")
	}
	p = clonePost(p)
	return &p, nil
}

func (s *Posts) List(_ context.Context) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Post, 0, len(s.docs))
	for _, p := range s.docs {
		p := clonePost(p)
		out = append(out, &p)
	}
	slices.SortFunc(out, func(a, b *models.Post) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (s *Posts) Save(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	if _, ok := s.docs[post.ID]; !ok {
		return models.NewNotFoundError("Post")
	}
	post.UpdatedAt = s.clock.now()
	s.docs[post.ID] = clonePost(*post)
	return nil
}

// Put stores post as-is, for seeding.
func (s *Posts) Put(post models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[post.ID] = clonePost(post)
}

type Comments struct {
	mu    sync.Mutex
	clock clock
	docs  map[primitive.ObjectID]models.Comment

	// FindByPostErr, when set, is returned by FindByPost.
	FindByPostErr error
}

func NewComments() *Comments {
	return &Comments{docs: make(map[primitive.ObjectID]models.Comment)}
}

func (s *Comments) Create(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.Likes == nil {
		comment.Likes = models.LikeSet{}
	}
	ts := s.clock.now()
	comment.CreatedAt, comment.UpdatedAt = ts, ts
	s.docs[comment.ID] = cloneComment(*comment)
	return nil
}

func (s *Comments) FindByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.docs[id]
	if !ok {
		return nil, models.NewNotFoundError("Comment")
	}
	c = cloneComment(c)
	return &c, nil
}

func (s *Comments) FindByPost(_ context.Context, postID primitive.ObjectID) ([]*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindByPostErr != nil {
		return nil, s.FindByPostErr
	}
	out := []*models.Comment{}
	for _, c := range s.docs {
		if c.PostID != postID {
			continue
		}
		c := cloneComment(c)
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *models.Comment) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (s *Comments) Save(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[comment.ID]; !ok {
		return models.NewNotFoundError("Comment")
	}
	comment.UpdatedAt = s.clock.now()
	s.docs[comment.ID] = cloneComment(*comment)
	return nil
}

func (s *Comments) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return models.NewNotFoundError("Comment")
	}
	delete(s.docs, id)
	return nil
}

type Users struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.User
}

func NewUsers() *Users {
	return &Users{docs: make(map[primitive.ObjectID]models.User)}
}

// Add registers a user with the given name and returns its id.
func (s *Users) Add(name string) primitive.ObjectID {
	u := models.User{
		ID:    primitive.NewObjectID(),
		Name:  name,
		Email: strings.ToLower(name) + "@example.com",
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[u.ID] = u
	return u.ID
}

func (s *Users) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range s.docs {
		if u.Email == user.Email {
			return models.NewConflictError("Email already in use")
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	s.docs[user.ID] = *user
	return nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.docs {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, models.NewNotFoundError("User")
}

func (s *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.docs[id]
	if !ok {
		return nil, models.NewNotFoundError("User")
	}
	return &u, nil
}

func (s *Users) Summaries(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := s.docs[id]; ok {
			out[id] = u.Summary()
		}
	}
	return out, nil
}

func clonePost(p models.Post) models.Post {
	p.Likes = slices.Clone(p.Likes)
	if p.Likes == nil {
		p.Likes = models.LikeSet{}
	}
	return p
}

func cloneComment(c models.Comment) models.Comment {
	c.Likes = slices.Clone(c.Likes)
	if c.Likes == nil {
		c.Likes = models.LikeSet{}
	}
	return c
}
