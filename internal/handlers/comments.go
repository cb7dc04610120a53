// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"

	"inkpost/internal/blog"
	"inkpost/internal/render"
)

// Comments lists the comments of a post with their replies.
func (h *Blog) Comments(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	comments, err := h.blog.ListCommentsForPost(id)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}

	data := map[string]any{"PostID": id, "Comments": comments}
	post, err := h.blog.GetPost(id)
	switch {
	case err == nil:
		data["Post"] = post
	case !errors.Is(err, blog.ErrNotFound):
		h.fail(w, r, err, nil)
		return
	}

	h.renderer.Page(w, r, "comments", &render.PageData{
		Title: "Comments",
		Data:  data,
	})
}

func (h *Blog) commentForm(w http.ResponseWriter, r *http.Request, status int, title, action string, in blog.CommentInput, fields map[string]string) {
	h.renderer.PageStatus(w, r, status, "comment_form", &render.PageData{
		Title:  title,
		Errors: fields,
		Data:   map[string]any{"Action": action, "Form": in},
	})
}

// CreateCommentPage renders an empty comment form for a post.
func (h *Blog) CreateCommentPage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	if _, err := h.blog.GetPost(id); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.commentForm(w, r, http.StatusOK, "Add comment", "/post_detail/"+id.String()+"/create-comment", blog.CommentInput{}, nil)
}

// CreateCommentSubmit stores a comment on a post.
func (h *Blog) CreateCommentSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	in := blog.CommentInput{Body: r.FormValue("body")}
	_, out, err := h.blog.CreateComment(actorFrom(r), id, in)
	if err != nil {
		h.fail(w, r, err, func(fields map[string]string) {
			h.commentForm(w, r, http.StatusUnprocessableEntity, "Add comment", "/post_detail/"+id.String()+"/create-comment", in, fields)
		})
		return
	}
	h.follow(w, r, out)
}

// UpdateCommentPage renders the edit form of a comment.
func (h *Blog) UpdateCommentPage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	c, err := h.blog.EditableComment(actorFrom(r), id)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.commentForm(w, r, http.StatusOK, "Edit comment", "/comment_update/"+id.String(), blog.CommentInput{Body: c.Body}, nil)
}

// UpdateCommentSubmit saves an edited comment.
func (h *Blog) UpdateCommentSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	in := blog.CommentInput{Body: r.FormValue("body")}
	_, out, err := h.blog.UpdateComment(actorFrom(r), id, in)
	if err != nil {
		h.fail(w, r, err, func(fields map[string]string) {
			h.commentForm(w, r, http.StatusUnprocessableEntity, "Edit comment", "/comment_update/"+id.String(), in, fields)
		})
		return
	}
	h.follow(w, r, out)
}

// replyForm renders the reply form for the comment in the URL.
func (h *Blog) replyForm(w http.ResponseWriter, r *http.Request, status int, in blog.ReplyInput, fields map[string]string) error {
	id, err := idParam(r)
	if err != nil {
		return err
	}
	c, err := h.blog.GetComment(id)
	if err != nil {
		return err
	}
	h.renderer.PageStatus(w, r, status, "reply_form", &render.PageData{
		Title:  "Reply",
		Errors: fields,
		Data:   map[string]any{"Comment": c, "Form": in},
	})
	return nil
}

// ReplyPage renders the reply form under the quoted comment.
func (h *Blog) ReplyPage(w http.ResponseWriter, r *http.Request) {
	if err := h.replyForm(w, r, http.StatusOK, blog.ReplyInput{}, nil); err != nil {
		h.fail(w, r, err, nil)
	}
}

// ReplySubmit stores a reply to a comment.
func (h *Blog) ReplySubmit(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	in := blog.ReplyInput{Body: r.FormValue("body")}
	_, out, err := h.blog.CreateReply(actorFrom(r), id, in)
	if err != nil {
		h.fail(w, r, err, func(fields map[string]string) {
			if err := h.replyForm(w, r, http.StatusUnprocessableEntity, in, fields); err != nil {
				h.fail(w, r, err, nil)
			}
		})
		return
	}
	h.follow(w, r, out)
}
