package service

import (
	"context"

	"postboard/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Projector joins author and liker identities into posts and comments for
// display. Nothing it produces is persisted.
type Projector struct {
	users UserDirectory
}

func NewProjector(users UserDirectory) *Projector {
	return &Projector{users: users}
}

func (p *Projector) Post(ctx context.Context, post *models.Post) (*models.PostView, error) {
	views, err := p.Posts(ctx, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// Posts projects posts with a single directory lookup.
func (p *Projector) Posts(ctx context.Context, posts []*models.Post) ([]*models.PostView, error) {
	var ids idSet
	for _, post := range posts {
		ids.add(post.UserID)
		ids.add(post.Likes...)
	}
	names, err := p.users.Summaries(ctx, ids.list)
	if err != nil {
		return nil, err
	}

	views := make([]*models.PostView, len(posts))
	for i, post := range posts {
		views[i] = &models.PostView{
			ID:           post.ID,
			Author:       lookup(names, post.UserID),
			Text:         post.Text,
			Image:        post.Image,
			Likes:        lookupAll(names, post.Likes),
			CommentCount: post.CommentCount,
			CreatedAt:    post.CreatedAt,
			UpdatedAt:    post.UpdatedAt,
		}
	}
	return views, nil
}

func (p *Projector) Comment(ctx context.Context, comment *models.Comment) (*models.CommentView, error) {
	views, err := p.Comments(ctx, []*models.Comment{comment})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (p *Projector) Comments(ctx context.Context, comments []*models.Comment) ([]*models.CommentView, error) {
	var ids idSet
	for _, c := range comments {
		ids.add(c.UserID)
		ids.add(c.Likes...)
	}
	names, err := p.users.Summaries(ctx, ids.list)
	if err != nil {
		return nil, err
	}

	views := make([]*models.CommentView, len(comments))
	for i, c := range comments {
		views[i] = &models.CommentView{
			ID:        c.ID,
			PostID:    c.PostID,
			Author:    lookup(names, c.UserID),
			Text:      c.Text,
			Likes:     lookupAll(names, c.Likes),
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
	}
	return views, nil
}

type idSet struct {
	seen map[primitive.ObjectID]struct{}
	list []primitive.ObjectID
}

func (s *idSet) add(ids ...primitive.ObjectID) {
	if s.seen == nil {
		s.seen = make(map[primitive.ObjectID]struct{})
	}
	for _, id := range ids {
		if _, ok := s.seen[id]; ok {
			continue
		}
		s.seen[id] = struct{}{}
		s.list = append(s.list, id)
	}
}

func lookup(names map[primitive.ObjectID]models.UserSummary, id primitive.ObjectID) models.UserSummary {
	if u, ok := names[id]; ok {
		return u
	}
	return models.FallbackSummary(id)
}

func lookupAll(names map[primitive.ObjectID]models.UserSummary, ids []primitive.ObjectID) []models.UserSummary {
	out := make([]models.UserSummary, len(ids))
	for i, id := range ids {
		out[i] = lookup(names, id)
	}
	return out
}
