// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "github.com/google/uuid"

// Category is a flat label attached to posts. Deleting a category clears
// the reference on its posts rather than deleting them.
type Category struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}
