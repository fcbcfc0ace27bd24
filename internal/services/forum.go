package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"github.com/AnshRaj112/researchhive-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreatePostInput struct {
	Type    models.PostType `json:"type"`
	Title   string          `json:"title"`
	Content string          `json:"content"`
}

type ForumService struct {
	store    storage.Forum
	users    *UserService
	notifier *NotificationService
}

func NewForumService(store storage.Forum, users *UserService, notifier *NotificationService) *ForumService {
	return &ForumService{store: store, users: users, notifier: notifier}
}

// List returns posts newest first, optionally only of one type.
func (s *ForumService) List(ctx context.Context, typ string, page storage.Page) ([]models.ForumPost, error) {
	filter := storage.ForumFilter{}
	if typ != "" {
		t := models.PostType(strings.ToLower(typ))
		if !t.Valid() {
			return nil, utils.Invalid("type", "type must be idea or issue")
		}
		filter.Type = t
	}
	return s.store.ListPosts(ctx, filter, page)
}

func (s *ForumService) Create(ctx context.Context, actor primitive.ObjectID, in CreatePostInput) (*models.ForumPost, error) {
	in.Type = models.PostType(strings.ToLower(string(in.Type)))
	if err := utils.Required("type", string(in.Type)); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, utils.Invalid("type", "type must be idea or issue")
	}
	if err := utils.Required("title", in.Title); err != nil {
		return nil, err
	}
	if err := utils.Required("content", in.Content); err != nil {
		return nil, err
	}

	post := &models.ForumPost{
		Author:     actor,
		AuthorName: s.users.displayName(ctx, actor),
		Type:       in.Type,
		Title:      strings.TrimSpace(in.Title),
		Content:    in.Content,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *ForumService) Get(ctx context.Context, id string) (*models.ForumPost, error) {
	oid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	return s.store.GetPost(ctx, oid)
}

// ToggleLike likes the post, or removes the caller's like when already present.
func (s *ForumService) ToggleLike(ctx context.Context, actor primitive.ObjectID, id string) (*models.ForumPost, error) {
	oid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	return s.store.ToggleLike(ctx, oid, actor)
}

// Comment appends the caller's comment and then notifies the post author.
func (s *ForumService) Comment(ctx context.Context, actor primitive.ObjectID, id, text string) (*models.ForumPost, error) {
	oid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	if err := utils.Required("text", text); err != nil {
		return nil, err
	}

	name := s.users.displayName(ctx, actor)
	post, err := s.store.AddComment(ctx, oid, models.Comment{User: actor, UserName: name, Text: strings.TrimSpace(text)})
	if err != nil {
		return nil, err
	}

	if post.Author != actor && !post.Author.IsZero() {
		s.notifier.Send(ctx, post.Author, models.NotificationForum,
			fmt.Sprintf("%s commented on your post %q", name, post.Title),
			"/forum/"+post.ID.Hex())
	}
	return post, nil
}

// Delete removes a post; only its author may.
func (s *ForumService) Delete(ctx context.Context, actor primitive.ObjectID, id string) error {
	oid, err := parseID("id", id)
	if err != nil {
		return err
	}
	post, err := s.store.GetPost(ctx, oid)
	if err != nil {
		return err
	}
	if post.Author != actor {
		return ErrForbidden
	}
	return s.store.DeletePost(ctx, oid)
}
