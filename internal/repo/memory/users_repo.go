package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/userdir/internal/domain/user"
)

// UsersRepo keeps records in process. It owns the stored pointers and hands out clones.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]*user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]*user.User),
	}
}

// Upsert stores u and returns the stored record, which keeps a self flag
// set by an earlier write.
func (r *UsersRepo) Upsert(ctx context.Context, u *user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.put(u), nil
}

func (r *UsersRepo) UpsertMany(ctx context.Context, us []*user.User) ([]*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*user.User, 0, len(us))
	for _, u := range us {
		out = append(out, r.put(u))
	}

	return out, nil
}

// put must be called with the write lock held.
func (r *UsersRepo) put(u *user.User) *user.User {
	next := u.Clone()
	next.KeepSelf(r.items[u.ID])
	r.items[u.ID] = next

	return next.Clone()
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	r.mu.RLock()
	u, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return nil, user.ErrUserNotFound
	}

	return u.Clone(), nil
}

// Update runs fn against the stored record while holding the write lock.
// If fn fails the stored record is left as it was.
func (r *UsersRepo) Update(ctx context.Context, id string, fn func(*user.User) error) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.items[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}

	next := cur.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}

	r.items[id] = next

	return next.Clone(), nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(r.items, id)

	return nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return nil
}
