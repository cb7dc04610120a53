// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// FlashCookieName identifies the visitor's flash queue. It is separate
	// from the session cookie so anonymous visitors get notices too.
	FlashCookieName = "inkpost_flash"

	flashPrefix = "flash:"
	flashTTL    = 10 * time.Minute
)

// Flash is a one-shot notice shown on the next rendered page.
// Type is one of "success", "info" or "error".
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AddFlash queues a notice for the visitor behind r.
func (s *Store) AddFlash(ctx context.Context, w http.ResponseWriter, r *http.Request, f Flash) error {
	id := ""
	if c, err := r.Cookie(FlashCookieName); err == nil && c.Value != "" {
		id = c.Value
	} else {
		newID, err := generateID()
		if err != nil {
			return fmt.Errorf("flash id: %w", err)
		}
		id = newID
		http.SetCookie(w, &http.Cookie{
			Name:     FlashCookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			MaxAge:   int(flashTTL / time.Second),
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})
		// Later AddFlash calls on the same request reuse the queue.
		r.AddCookie(&http.Cookie{Name: FlashCookieName, Value: id})
	}

	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("flash marshal: %w", err)
	}

	key := flashPrefix + id
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		pipe.Expire(ctx, key, flashTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("flash add: %w", err)
	}
	return nil
}

// PopFlashes returns and clears every queued notice for the visitor. When w
// is not nil the flash cookie is expired as well, so the visitor goes back
// to being served cached pages.
func (s *Store) PopFlashes(ctx context.Context, w http.ResponseWriter, r *http.Request) ([]Flash, error) {
	c, err := r.Cookie(FlashCookieName)
	if err != nil || c.Value == "" {
		return nil, nil
	}

	key := flashPrefix + c.Value
	var lr *redis.StringSliceCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lr = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("flash pop: %w", err)
	}
	items := lr.Val()

	if w != nil {
		http.SetCookie(w, &http.Cookie{
			Name:     FlashCookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}

	flashes := make([]Flash, 0, len(items))
	for _, raw := range items {
		var f Flash
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			continue
		}
		flashes = append(flashes, f)
	}
	return flashes, nil
}
