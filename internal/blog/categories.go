// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"strings"

	"inkpost/internal/models"
)

// CreateCategory adds a category. Anyone may create one; actor is accepted
// for symmetry and not checked.
func (s *Service) CreateCategory(_ *Actor, in CategoryInput) (*models.Category, Outcome, error) {
	title := strings.TrimSpace(in.Title)
	if err := validateText("title", title, MaxCategoryTitleLen); err != nil {
		return nil, Outcome{}, err
	}

	created, err := s.categories.Create(title)
	if err != nil {
		return nil, Outcome{}, err
	}
	return created, Outcome{View: ViewCategoryList, Notice: &Notice{NoticeSuccess, MsgCategoryCreated}}, nil
}

// ListCategories returns every category.
func (s *Service) ListCategories() ([]models.Category, error) {
	return s.categories.List()
}
