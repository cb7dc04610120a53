// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"strings"

	"github.com/google/uuid"

	"inkpost/internal/models"
	"inkpost/internal/slug"
)

// PostDetail is a post with everything its detail view shows.
type PostDetail struct {
	Post     *models.Post
	Comments []models.Comment
	Liked    bool // whether the viewing actor likes the post
}

// Page is one page of a paginated post listing. Number is 1-based.
type Page struct {
	Items    []models.Post
	Number   int
	NumPages int
	Total    int
}

// HasPrev reports whether a previous page exists.
func (p *Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p *Page) HasNext() bool { return p.Number < p.NumPages }

// PrevNumber returns the previous page number.
func (p *Page) PrevNumber() int { return p.Number - 1 }

// NextNumber returns the next page number.
func (p *Page) NextNumber() int { return p.Number + 1 }

// --- Mutations ---

// CreatePost stores a new post authored by actor. Published posts lead to
// the post list, drafts to the author's draft list.
func (s *Service) CreatePost(actor *Actor, in PostInput) (*models.Post, Outcome, error) {
	if actor == nil {
		return nil, Outcome{}, ErrUnauthorized
	}
	f, err := s.validatePost(in)
	if err != nil {
		return nil, Outcome{}, err
	}

	created, err := s.posts.Create(&models.Post{
		CategoryID: f.categoryID,
		AuthorID:   actor.ID,
		Title:      f.title,
		Slug:       slug.Generate(f.title),
		Body:       f.body,
		Status:     f.status,
	})
	if err != nil {
		return nil, Outcome{}, err
	}

	if created.IsPublished() {
		return created, Outcome{View: ViewPostList, Notice: &Notice{NoticeSuccess, MsgPostCreated}}, nil
	}
	return created, Outcome{View: ViewDraftList, Notice: &Notice{NoticeInfo, MsgPostSavedAsDraft}}, nil
}

// UpdatePost replaces the editable fields of a post. A published result
// leads to its detail view, a draft to the draft list.
func (s *Service) UpdatePost(actor *Actor, id uuid.UUID, in PostInput) (*models.Post, Outcome, error) {
	if actor == nil {
		return nil, Outcome{}, ErrUnauthorized
	}
	post, err := s.ownedPost(actor, id)
	if err != nil {
		return nil, Outcome{}, err
	}
	f, err := s.validatePost(in)
	if err != nil {
		return nil, Outcome{}, err
	}

	if post.Title != f.title {
		post.Slug = slug.Generate(f.title)
	}
	post.CategoryID = f.categoryID
	post.Title = f.title
	post.Body = f.body
	post.Status = f.status

	if err := s.posts.Update(post); err != nil {
		return nil, Outcome{}, err
	}
	updated, err := s.posts.FindByID(id)
	if err != nil {
		return nil, Outcome{}, err
	}
	if updated == nil {
		return nil, Outcome{}, ErrNotFound
	}

	if updated.IsPublished() {
		return updated, Outcome{View: ViewPostDetail, ID: id, Notice: &Notice{NoticeSuccess, MsgPostUpdated}}, nil
	}
	return updated, Outcome{View: ViewDraftList, Notice: &Notice{NoticeInfo, MsgPostStillDraft}}, nil
}

// DeletePost removes a post together with its comments, replies and likes.
func (s *Service) DeletePost(actor *Actor, id uuid.UUID) (Outcome, error) {
	if actor == nil {
		return Outcome{}, ErrUnauthorized
	}
	if _, err := s.ownedPost(actor, id); err != nil {
		return Outcome{}, err
	}
	if err := s.posts.Delete(id); err != nil {
		return Outcome{}, err
	}
	return Outcome{View: ViewPostList, Notice: &Notice{NoticeSuccess, MsgPostDeleted}}, nil
}

// ToggleLike likes the post for actor, or unlikes it if already liked.
// Anonymous visitors are sent to the login view, returning to the post
// afterwards, with an error notice; that is a normal outcome, not an error.
func (s *Service) ToggleLike(actor *Actor, id uuid.UUID) (Outcome, error) {
	post, err := s.posts.FindByID(id)
	if err != nil {
		return Outcome{}, err
	}
	if post == nil {
		return Outcome{}, ErrNotFound
	}
	if actor == nil {
		return Outcome{View: ViewLogin, ID: id, Notice: &Notice{NoticeError, MsgLoginToLike}}, nil
	}

	liked, err := s.posts.ToggleLike(id, actor.ID)
	if err != nil {
		return Outcome{}, err
	}
	msg := MsgUnliked
	if liked {
		msg = MsgLiked
	}
	return Outcome{View: ViewPostDetail, ID: id, Notice: &Notice{NoticeSuccess, msg}}, nil
}

// ownedPost loads a post for modification, applying the ownership rule
// when it is enabled.
func (s *Service) ownedPost(actor *Actor, id uuid.UUID) (*models.Post, error) {
	post, err := s.posts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	if s.opts.EnforceOwnership && post.AuthorID != actor.ID {
		return nil, ErrForbidden
	}
	return post, nil
}

// --- Queries ---

// GetPost returns a post of any status, for edit and delete forms.
func (s *Service) GetPost(id uuid.UUID) (*models.Post, error) {
	post, err := s.posts.FindByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return post, nil
}

// EditablePost returns a post for the edit and delete forms, applying the
// ownership rule when it is enabled.
func (s *Service) EditablePost(actor *Actor, id uuid.UUID) (*models.Post, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	return s.ownedPost(actor, id)
}

// ListPublishedPosts returns published posts, newest first. A non-blank
// term narrows the list to posts whose category title or body contains it,
// ignoring case.
func (s *Service) ListPublishedPosts(term string) ([]models.Post, error) {
	return s.posts.ListPublished(strings.TrimSpace(term))
}

// GetPostDetail returns a post of any status with all of its comments.
func (s *Service) GetPostDetail(actor *Actor, id uuid.UUID) (*PostDetail, error) {
	post, err := s.GetPost(id)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(id)
	if err != nil {
		return nil, err
	}

	d := &PostDetail{Post: post, Comments: comments}
	if actor != nil {
		if d.Liked, err = s.posts.HasLiked(id, actor.ID); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// ListMostCommented returns the five posts with the most comments.
func (s *Service) ListMostCommented() ([]models.Post, error) {
	return s.posts.ListMostCommented(MostCommentedLimit)
}

// ListMostLiked returns every post ordered by its number of likers.
func (s *Service) ListMostLiked() ([]models.Post, error) {
	return s.posts.ListMostLiked()
}

// ListDraftPosts returns one page of the actor's drafts. Page numbers
// below 1 are treated as 1; a page past the end is ErrNotFound.
func (s *Service) ListDraftPosts(actor *Actor, page int) (*Page, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if page < 1 {
		page = 1
	}

	total, err := s.posts.CountDrafts(actor.ID)
	if err != nil {
		return nil, err
	}
	numPages := (total + DraftsPerPage - 1) / DraftsPerPage
	if numPages == 0 {
		numPages = 1
	}
	if page > numPages {
		return nil, ErrNotFound
	}

	items, err := s.posts.ListDrafts(actor.ID, DraftsPerPage, (page-1)*DraftsPerPage)
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, Number: page, NumPages: numPages, Total: total}, nil
}

// GetDraftDetail returns a draft only to its author.
func (s *Service) GetDraftDetail(actor *Actor, id uuid.UUID) (*models.Post, error) {
	if actor == nil {
		return nil, ErrNotFound
	}
	post, err := s.posts.FindDraft(actor.ID, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return post, nil
}
