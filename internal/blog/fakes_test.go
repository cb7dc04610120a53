package blog

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkpost/internal/models"
)

// memStore is an in-memory stand-in for the three stores. It mirrors the
// SQL semantics the service relies on, including the cascades.
type memStore struct {
	clock      time.Time
	posts      []*models.Post
	likes      map[uuid.UUID]map[uuid.UUID]bool
	comments   []*models.Comment
	replies    []*models.Reply
	categories []models.Category
	usernames  map[uuid.UUID]string

	failNext error // returned once by the next write, then cleared
}

func newMemStore() *memStore {
	return &memStore{
		clock:     time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		likes:     make(map[uuid.UUID]map[uuid.UUID]bool),
		usernames: make(map[uuid.UUID]string),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) fail() error {
	err := m.failNext
	m.failNext = nil
	return err
}

// newService wires a Service to a fresh memStore.
func newService(opts Options) (*Service, *memStore) {
	m := newMemStore()
	return New(postRepo{m}, commentRepo{m}, categoryRepo{m}, opts), m
}

// actor registers a user in the store and returns it as an Actor.
func (m *memStore) actor(username string) *Actor {
	a := &Actor{ID: uuid.New(), Username: username, Email: username + "@example.com"}
	m.usernames[a.ID] = username
	return a
}

func (m *memStore) decorate(p *models.Post) models.Post {
	out := *p
	out.AuthorName = m.usernames[p.AuthorID]
	out.LikeCount = len(m.likes[p.ID])
	out.CommentCount = 0
	for _, c := range m.comments {
		if c.PostID == p.ID {
			out.CommentCount++
		}
	}
	out.CategoryTitle = nil
	if p.CategoryID != nil {
		for _, c := range m.categories {
			if c.ID == *p.CategoryID {
				title := c.Title
				out.CategoryTitle = &title
			}
		}
	}
	return out
}

func (m *memStore) sortedPosts(keep func(models.Post) bool) []models.Post {
	var out []models.Post
	for _, p := range m.posts {
		d := m.decorate(p)
		if keep == nil || keep(d) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}

func (m *memStore) deleteCategory(id uuid.UUID) {
	for i, c := range m.categories {
		if c.ID == id {
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			break
		}
	}
	for _, p := range m.posts {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
		}
	}
}

// --- posts ---

type postRepo struct{ m *memStore }

func (r postRepo) FindByID(id uuid.UUID) (*models.Post, error) {
	for _, p := range r.m.posts {
		if p.ID == id {
			d := r.m.decorate(p)
			return &d, nil
		}
	}
	return nil, nil
}

func (r postRepo) ListPublished(search string) ([]models.Post, error) {
	term := strings.ToLower(search)
	return r.m.sortedPosts(func(p models.Post) bool {
		if !p.IsPublished() {
			return false
		}
		if term == "" {
			return true
		}
		if p.CategoryTitle != nil && strings.Contains(strings.ToLower(*p.CategoryTitle), term) {
			return true
		}
		return strings.Contains(strings.ToLower(p.Body), term)
	}), nil
}

func (r postRepo) ListMostCommented(limit int) ([]models.Post, error) {
	out := r.m.sortedPosts(nil)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CommentCount > out[j].CommentCount })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r postRepo) ListMostLiked() ([]models.Post, error) {
	out := r.m.sortedPosts(nil)
	sort.SliceStable(out, func(i, j int) bool { return out[i].LikeCount > out[j].LikeCount })
	return out, nil
}

func (r postRepo) drafts(authorID uuid.UUID) []models.Post {
	return r.m.sortedPosts(func(p models.Post) bool {
		return p.AuthorID == authorID && p.IsDraft()
	})
}

func (r postRepo) ListDrafts(authorID uuid.UUID, limit, offset int) ([]models.Post, error) {
	all := r.drafts(authorID)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r postRepo) CountDrafts(authorID uuid.UUID) (int, error) {
	return len(r.drafts(authorID)), nil
}

func (r postRepo) FindDraft(authorID, id uuid.UUID) (*models.Post, error) {
	p, _ := r.FindByID(id)
	if p == nil || p.AuthorID != authorID || !p.IsDraft() {
		return nil, nil
	}
	return p, nil
}

func (r postRepo) Create(p *models.Post) (*models.Post, error) {
	if err := r.m.fail(); err != nil {
		return nil, err
	}
	now := r.m.tick()
	stored := *p
	stored.ID = uuid.New()
	if stored.PublishedAt.IsZero() {
		stored.PublishedAt = now
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.m.posts = append(r.m.posts, &stored)
	return r.FindByID(stored.ID)
}

func (r postRepo) Update(p *models.Post) error {
	if err := r.m.fail(); err != nil {
		return err
	}
	for _, stored := range r.m.posts {
		if stored.ID == p.ID {
			stored.CategoryID = p.CategoryID
			stored.Title = p.Title
			stored.Slug = p.Slug
			stored.Body = p.Body
			stored.Status = p.Status
			stored.UpdatedAt = r.m.tick()
			return nil
		}
	}
	return nil
}

func (r postRepo) Delete(id uuid.UUID) error {
	if err := r.m.fail(); err != nil {
		return err
	}
	for i, p := range r.m.posts {
		if p.ID == id {
			r.m.posts = append(r.m.posts[:i], r.m.posts[i+1:]...)
			break
		}
	}
	delete(r.m.likes, id)

	gone := make(map[uuid.UUID]bool)
	kept := r.m.comments[:0]
	for _, c := range r.m.comments {
		if c.PostID == id {
			gone[c.ID] = true
			continue
		}
		kept = append(kept, c)
	}
	r.m.comments = kept

	keptReplies := r.m.replies[:0]
	for _, rep := range r.m.replies {
		if !gone[rep.CommentID] {
			keptReplies = append(keptReplies, rep)
		}
	}
	r.m.replies = keptReplies
	return nil
}

func (r postRepo) ToggleLike(postID, userID uuid.UUID) (bool, error) {
	if err := r.m.fail(); err != nil {
		return false, err
	}
	set := r.m.likes[postID]
	if set == nil {
		set = make(map[uuid.UUID]bool)
		r.m.likes[postID] = set
	}
	if set[userID] {
		delete(set, userID)
		return false, nil
	}
	set[userID] = true
	return true, nil
}

func (r postRepo) HasLiked(postID, userID uuid.UUID) (bool, error) {
	return r.m.likes[postID][userID], nil
}

// --- comments ---

type commentRepo struct{ m *memStore }

func (r commentRepo) decorate(c *models.Comment) models.Comment {
	out := *c
	out.AuthorName = r.m.usernames[c.AuthorID]
	out.Replies = nil
	for _, rep := range r.m.replies {
		if rep.CommentID == c.ID {
			rr := *rep
			rr.AuthorName = r.m.usernames[rep.AuthorID]
			out.Replies = append(out.Replies, rr)
		}
	}
	return out
}

func (r commentRepo) ListByPost(postID uuid.UUID) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range r.m.comments {
		if c.PostID == postID {
			out = append(out, r.decorate(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r commentRepo) FindByID(id uuid.UUID) (*models.Comment, error) {
	for _, c := range r.m.comments {
		if c.ID == id {
			d := r.decorate(c)
			return &d, nil
		}
	}
	return nil, nil
}

func (r commentRepo) Create(c *models.Comment) (*models.Comment, error) {
	if err := r.m.fail(); err != nil {
		return nil, err
	}
	now := r.m.tick()
	stored := *c
	stored.ID = uuid.New()
	stored.Active = true
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.m.comments = append(r.m.comments, &stored)
	return r.FindByID(stored.ID)
}

func (r commentRepo) UpdateBody(id uuid.UUID, body string) error {
	if err := r.m.fail(); err != nil {
		return err
	}
	for _, c := range r.m.comments {
		if c.ID == id {
			c.Body = body
			c.UpdatedAt = r.m.tick()
		}
	}
	return nil
}

func (r commentRepo) CreateReply(rep *models.Reply) (*models.Reply, error) {
	if err := r.m.fail(); err != nil {
		return nil, err
	}
	now := r.m.tick()
	stored := *rep
	stored.ID = uuid.New()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.m.replies = append(r.m.replies, &stored)
	out := stored
	return &out, nil
}

// --- categories ---

type categoryRepo struct{ m *memStore }

func (r categoryRepo) List() ([]models.Category, error) {
	return append([]models.Category(nil), r.m.categories...), nil
}

func (r categoryRepo) FindByID(id uuid.UUID) (*models.Category, error) {
	for _, c := range r.m.categories {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

func (r categoryRepo) Create(title string) (*models.Category, error) {
	if err := r.m.fail(); err != nil {
		return nil, err
	}
	c := models.Category{ID: uuid.New(), Title: title}
	r.m.categories = append(r.m.categories, c)
	return &c, nil
}

var errStorage = errors.New("storage unavailable")
