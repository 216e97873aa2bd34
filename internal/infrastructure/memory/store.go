// Package memory is a process-local store used for development and tests.
// It enforces the same keys, foreign keys and cascades as the SQL schema.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
	repo "github.com/oksasatya/go-community-market/internal/domain/repository"
)

type productRow struct {
	entity.Product
	seq int64
}

type commentRow struct {
	entity.Comment
	seq int64
}

type Store struct {
	mu       sync.RWMutex
	seq      int64
	now      func() time.Time
	profiles map[string]entity.Profile
	products map[string]*productRow
	comments map[string]*commentRow
	accounts map[string]entity.Account
}

func NewStore() *Store {
	return &Store{
		now:      func() time.Time { return time.Now().UTC() },
		profiles: make(map[string]entity.Profile),
		products: make(map[string]*productRow),
		comments: make(map[string]*commentRow),
		accounts: make(map[string]entity.Account),
	}
}

// SetClock replaces the time source used for created_at and updated_at.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Store) Profiles() repo.ProfileRepository { return profileRepo{s} }
func (s *Store) Products() repo.ProductRepository { return productRepo{s} }
func (s *Store) Comments() repo.CommentRepository { return commentRepo{s} }
func (s *Store) Accounts() repo.AccountRepository { return accountRepo{s} }

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

func newestFirst(ca, cb time.Time, sa, sb int64) bool {
	if !ca.Equal(cb) {
		return ca.After(cb)
	}
	return sa > sb
}

func (s *Store) owner(userID string) *entity.OwnerSummary {
	p, ok := s.profiles[userID]
	if !ok {
		return nil
	}
	return &entity.OwnerSummary{Username: p.Username, Email: p.Email}
}

func (s *Store) username(userID string) string {
	return s.profiles[userID].Username
}

// ---- profiles ----

type profileRepo struct{ s *Store }

func (r profileRepo) GetByID(_ context.Context, id string) (*entity.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &p, nil
}

func (r profileRepo) Create(_ context.Context, p *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[p.ID]; ok {
		return repo.ErrDuplicate
	}
	now := r.s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.profiles[p.ID] = *p
	return nil
}

func (r profileRepo) Update(_ context.Context, p *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.profiles[p.ID]
	if !ok {
		return repo.ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = r.s.now()
	r.s.profiles[p.ID] = *p
	return nil
}

func (r profileRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.profiles), nil
}

// ---- products ----

type productRepo struct{ s *Store }

func matches(p *entity.Product, f repo.ProductFilter) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.OwnerID != "" && p.UserID != f.OwnerID {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	return true
}

func (r productRepo) List(_ context.Context, f repo.ProductFilter) ([]entity.ProductListItem, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]*productRow, 0, len(r.s.products))
	for _, row := range r.s.products {
		if matches(&row.Product, f) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return newestFirst(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].seq, rows[j].seq)
	})

	total := len(rows)
	start := min(max(f.Offset, 0), total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}

	counts := make(map[string]int)
	for _, c := range r.s.comments {
		counts[c.ProductID]++
	}
	out := make([]entity.ProductListItem, 0, end-start)
	for _, row := range rows[start:end] {
		out = append(out, entity.ProductListItem{
			Product:      row.Product,
			Profile:      r.s.owner(row.UserID),
			CommentCount: counts[row.ID],
		})
	}
	return out, total, nil
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.products[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	p := row.Product
	return &p, nil
}

func (r productRepo) GetDetail(_ context.Context, id string) (*entity.ProductDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.products[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &entity.ProductDetail{
		Product:  row.Product,
		Profile:  r.s.owner(row.UserID),
		Comments: r.s.commentViews(func(c *commentRow) bool { return c.ProductID == id }, false),
	}, nil
}

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[p.UserID]; !ok {
		return fmt.Errorf("insert product: owner %q has no profile", p.UserID)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, ok := r.s.products[p.ID]; ok {
		return repo.ErrDuplicate
	}
	now := r.s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.products[p.ID] = &productRow{Product: *p, seq: r.s.nextSeq()}
	return nil
}

func (r productRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.products[p.ID]
	if !ok {
		return repo.ErrNotFound
	}
	p.UserID = row.UserID
	p.CreatedAt = row.CreatedAt
	p.UpdatedAt = r.s.now()
	row.Product = *p
	return nil
}

func (r productRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.products, id)
	for cid, c := range r.s.comments {
		if c.ProductID == id {
			delete(r.s.comments, cid)
		}
	}
	return nil
}

func (r productRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.products), nil
}

// ---- comments ----

type commentRepo struct{ s *Store }

// commentViews must be called with the lock held.
func (s *Store) commentViews(keep func(*commentRow) bool, withTitle bool) []entity.CommentView {
	rows := make([]*commentRow, 0)
	for _, c := range s.comments {
		if keep(c) {
			rows = append(rows, c)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return newestFirst(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].seq, rows[j].seq)
	})
	out := make([]entity.CommentView, 0, len(rows))
	for _, c := range rows {
		v := entity.CommentView{Comment: c.Comment, AuthorUsername: s.username(c.UserID)}
		if withTitle {
			if p, ok := s.products[c.ProductID]; ok {
				v.ProductTitle = p.Title
			}
		}
		out = append(out, v)
	}
	return out
}

func (r commentRepo) ListByProduct(_ context.Context, productID string) ([]entity.CommentView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.commentViews(func(c *commentRow) bool { return c.ProductID == productID }, false), nil
}

func (r commentRepo) ListByAuthor(_ context.Context, userID string) ([]entity.CommentView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.commentViews(func(c *commentRow) bool { return c.UserID == userID }, true), nil
}

func (r commentRepo) GetByID(_ context.Context, id string) (*entity.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.comments[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c := row.Comment
	return &c, nil
}

func (r commentRepo) Create(_ context.Context, c *entity.Comment) (*entity.CommentView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[c.ProductID]; !ok {
		return nil, fmt.Errorf("insert comment: product %q does not exist", c.ProductID)
	}
	if _, ok := r.s.profiles[c.UserID]; !ok {
		return nil, fmt.Errorf("insert comment: author %q has no profile", c.UserID)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := r.s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.comments[c.ID] = &commentRow{Comment: *c, seq: r.s.nextSeq()}
	return &entity.CommentView{Comment: *c, AuthorUsername: r.s.username(c.UserID)}, nil
}

func (r commentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r commentRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.comments), nil
}

// ---- accounts ----

type accountRepo struct{ s *Store }

func (r accountRepo) Create(_ context.Context, a *entity.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return repo.ErrDuplicate
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = r.s.now()
	r.s.accounts[a.ID] = *a
	return nil
}

func (r accountRepo) GetByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.accounts {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r accountRepo) GetByID(_ context.Context, id string) (*entity.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &a, nil
}
