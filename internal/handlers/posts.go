// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"inkpost/internal/blog"
	"inkpost/internal/cache"
	"inkpost/internal/models"
	"inkpost/internal/render"
)

// Home lists published posts, optionally narrowed by the q search term.
// The unfiltered list is served from the page cache.
func (h *Blog) Home(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	load := func() (*render.PageData, error) {
		posts, err := h.blog.ListPublishedPosts(q)
		if err != nil {
			return nil, err
		}
		return &render.PageData{
			Title:   "Latest posts",
			Section: "home",
			Data:    map[string]any{"Posts": posts, "Query": strings.TrimSpace(q)},
		}, nil
	}

	if strings.TrimSpace(q) == "" {
		h.cachedPage(w, r, cache.HomeKey, "home_page", load)
		return
	}
	data, err := load()
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.renderer.Page(w, r, "home_page", data)
}

// PostDetail shows a post with its comments and the like button.
func (h *Blog) PostDetail(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	detail, err := h.blog.GetPostDetail(actorFrom(r), id)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.renderer.Page(w, r, "post_detail", &render.PageData{
		Title: detail.Post.Title,
		Data:  map[string]any{"Detail": detail},
	})
}

// PostLike toggles the visitor's like on a post.
func (h *Blog) PostLike(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	out, err := h.blog.ToggleLike(actorFrom(r), id)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.follow(w, r, out)
}

// postInput reads the whitelisted post fields from the submitted form.
func postInput(r *http.Request) blog.PostInput {
	return blog.PostInput{
		Category: r.FormValue("category"),
		Title:    r.FormValue("title"),
		Body:     r.FormValue("body"),
		Status:   r.FormValue("status"),
	}
}

// postForm renders the create/edit form.
func (h *Blog) postForm(w http.ResponseWriter, r *http.Request, status int, title, action string, in blog.PostInput, fields map[string]string) {
	categories, err := h.blog.ListCategories()
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.renderer.PageStatus(w, r, status, "post_form", &render.PageData{
		Title:   title,
		Section: "create",
		Errors:  fields,
		Data: map[string]any{
			"Action":     action,
			"Form":       in,
			"Categories": categories,
		},
	})
}

// CreatePostPage renders an empty post form.
func (h *Blog) CreatePostPage(w http.ResponseWriter, r *http.Request) {
	in := blog.PostInput{Status: string(models.PostStatusDraft)}
	h.postForm(w, r, http.StatusOK, "New post", "/create_post", in, nil)
}

// CreatePostSubmit stores a new post.
func (h *Blog) CreatePostSubmit(w http.ResponseWriter, r *http.Request) {
	in := postInput(r)
	_, out, err := h.blog.CreatePost(actorFrom(r), in)
	if err != nil {
		h.fail(w, r, err, func(fields map[string]string) {
			h.postForm(w, r, http.StatusUnprocessableEntity, "New post", "/create_post", in, fields)
		})
		return
	}
	h.follow(w, r, out)
}

// UpdatePostPage renders the edit form filled with the post's values.
func (h *Blog) UpdatePostPage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	post, err := h.blog.EditablePost(actorFrom(r), id)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}

	in := blog.PostInput{
		Title:  post.Title,
		Body:   post.Body,
		Status: string(post.Status),
	}
	if post.CategoryID != nil {
		in.Category = post.CategoryID.String()
	}
	h.postForm(w, r, http.StatusOK, "Edit post", "/post_update/"+id.String(), in, nil)
}

// UpdatePostSubmit saves an edited post.
func (h *Blog) UpdatePostSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	in := postInput(r)
	_, out, err := h.blog.UpdatePost(actorFrom(r), id, in)
	if err != nil {
		h.fail(w, r, err, func(fields map[string]string) {
			h.postForm(w, r, http.StatusUnprocessableEntity, "Edit post", "/post_update/"+id.String(), in, fields)
		})
		return
	}
	h.follow(w, r, out)
}

// DeletePostPage asks for confirmation before deleting.
func (h *Blog) DeletePostPage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	post, err := h.blog.EditablePost(actorFrom(r), id)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.renderer.Page(w, r, "post_delete", &render.PageData{
		Title: "Delete post",
		Data:  map[string]any{"Post": post},
	})
}

// DeletePostSubmit deletes the post with its comments and likes.
func (h *Blog) DeletePostSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	out, err := h.blog.DeletePost(actorFrom(r), id)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.follow(w, r, out)
}

// MostCommented lists the most discussed posts.
func (h *Blog) MostCommented(w http.ResponseWriter, r *http.Request) {
	h.cachedPage(w, r, cache.MostCommentedKey, "most_commented", func() (*render.PageData, error) {
		posts, err := h.blog.ListMostCommented()
		if err != nil {
			return nil, err
		}
		return &render.PageData{
			Title:   "Most commented",
			Section: "most_commented",
			Data:    map[string]any{"Posts": posts},
		}, nil
	})
}

// MostLiked lists every post by number of likes.
func (h *Blog) MostLiked(w http.ResponseWriter, r *http.Request) {
	h.cachedPage(w, r, cache.MostLikedKey, "most_liked", func() (*render.PageData, error) {
		posts, err := h.blog.ListMostLiked()
		if err != nil {
			return nil, err
		}
		return &render.PageData{
			Title:   "Most liked",
			Section: "most_liked",
			Data:    map[string]any{"Posts": posts},
		}, nil
	})
}

// Drafts lists the visitor's drafts, three per page.
func (h *Blog) Drafts(w http.ResponseWriter, r *http.Request) {
	// Unparsable numbers fall back to the first page.
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	p, err := h.blog.ListDraftPosts(actorFrom(r), page)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.renderer.Page(w, r, "draft_list", &render.PageData{
		Title:   "Drafts",
		Section: "drafts",
		Data:    map[string]any{"Page": p},
	})
}

// DraftDetail shows one of the visitor's drafts.
func (h *Blog) DraftDetail(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	post, err := h.blog.GetDraftDetail(actorFrom(r), id)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.renderer.Page(w, r, "draft_detail", &render.PageData{
		Title:   post.Title,
		Section: "drafts",
		Data:    map[string]any{"Post": post},
	})
}
