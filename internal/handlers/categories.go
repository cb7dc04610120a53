// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"inkpost/internal/blog"
	"inkpost/internal/render"
)

// Categories lists every category.
func (h *Blog) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.blog.ListCategories()
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	h.renderer.Page(w, r, "category_list", &render.PageData{
		Title:   "Categories",
		Section: "category",
		Data:    map[string]any{"Categories": categories},
	})
}

func (h *Blog) categoryForm(w http.ResponseWriter, r *http.Request, status int, in blog.CategoryInput, fields map[string]string) {
	h.renderer.PageStatus(w, r, status, "category_form", &render.PageData{
		Title:   "New category",
		Section: "category",
		Errors:  fields,
		Data:    map[string]any{"Form": in},
	})
}

// CreateCategoryPage renders an empty category form.
func (h *Blog) CreateCategoryPage(w http.ResponseWriter, r *http.Request) {
	h.categoryForm(w, r, http.StatusOK, blog.CategoryInput{}, nil)
}

// CreateCategorySubmit stores a new category.
func (h *Blog) CreateCategorySubmit(w http.ResponseWriter, r *http.Request) {
	in := blog.CategoryInput{Title: r.FormValue("title")}
	_, out, err := h.blog.CreateCategory(actorFrom(r), in)
	if err != nil {
		h.fail(w, r, err, func(fields map[string]string) {
			h.categoryForm(w, r, http.StatusUnprocessableEntity, in, fields)
		})
		return
	}
	h.follow(w, r, out)
}
