// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"github.com/google/uuid"

	"inkpost/internal/models"
)

// CreateComment adds a comment by actor to a post. The comment's email is
// the actor's account email.
func (s *Service) CreateComment(actor *Actor, postID uuid.UUID, in CommentInput) (*models.Comment, Outcome, error) {
	if actor == nil {
		return nil, Outcome{}, ErrUnauthorized
	}
	post, err := s.posts.FindByID(postID)
	if err != nil {
		return nil, Outcome{}, err
	}
	if post == nil {
		return nil, Outcome{}, ErrNotFound
	}
	if err := validateText("body", in.Body, MaxCommentLen); err != nil {
		return nil, Outcome{}, err
	}

	created, err := s.comments.Create(&models.Comment{
		PostID:   postID,
		AuthorID: actor.ID,
		Body:     in.Body,
		Email:    actor.Email,
	})
	if err != nil {
		return nil, Outcome{}, err
	}
	return created, Outcome{View: ViewPostDetail, ID: postID, Notice: &Notice{NoticeSuccess, MsgCommentPosted}}, nil
}

// UpdateComment replaces a comment's body. Without EnforceOwnership no
// login is needed.
func (s *Service) UpdateComment(actor *Actor, id uuid.UUID, in CommentInput) (*models.Comment, Outcome, error) {
	if _, err := s.EditableComment(actor, id); err != nil {
		return nil, Outcome{}, err
	}
	if err := validateText("body", in.Body, MaxCommentLen); err != nil {
		return nil, Outcome{}, err
	}

	if err := s.comments.UpdateBody(id, in.Body); err != nil {
		return nil, Outcome{}, err
	}
	updated, err := s.GetComment(id)
	if err != nil {
		return nil, Outcome{}, err
	}
	return updated, Outcome{View: ViewCommentList, ID: updated.PostID, Notice: &Notice{NoticeSuccess, MsgCommentUpdated}}, nil
}

// CreateReply answers a comment on behalf of actor and leads back to the
// comment listing of the comment's post.
func (s *Service) CreateReply(actor *Actor, commentID uuid.UUID, in ReplyInput) (*models.Reply, Outcome, error) {
	if actor == nil {
		return nil, Outcome{}, ErrUnauthorized
	}
	comment, err := s.GetComment(commentID)
	if err != nil {
		return nil, Outcome{}, err
	}
	if err := validateText("body", in.Body, MaxCommentLen); err != nil {
		return nil, Outcome{}, err
	}

	created, err := s.comments.CreateReply(&models.Reply{
		CommentID: commentID,
		AuthorID:  actor.ID,
		Body:      in.Body,
	})
	if err != nil {
		return nil, Outcome{}, err
	}
	return created, Outcome{View: ViewCommentList, ID: comment.PostID, Notice: &Notice{NoticeSuccess, MsgReplyPosted}}, nil
}

// EditableComment returns a comment for its edit form, applying the
// ownership rule when it is enabled.
func (s *Service) EditableComment(actor *Actor, id uuid.UUID) (*models.Comment, error) {
	comment, err := s.GetComment(id)
	if err != nil {
		return nil, err
	}
	if s.opts.EnforceOwnership {
		if actor == nil {
			return nil, ErrUnauthorized
		}
		if comment.AuthorID != actor.ID {
			return nil, ErrForbidden
		}
	}
	return comment, nil
}

// GetComment returns a single comment.
func (s *Service) GetComment(id uuid.UUID) (*models.Comment, error) {
	c, err := s.comments.FindByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// ListCommentsForPost returns the comments on a post with their replies.
// An unknown post simply has no comments.
func (s *Service) ListCommentsForPost(postID uuid.UUID) ([]models.Comment, error) {
	return s.comments.ListByPost(postID)
}
