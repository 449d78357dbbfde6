package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/userdir/internal/domain/user"
	"github.com/geocoder89/userdir/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

const selectUserColumns = `
	id, name, email, phone, username, accent_id, locale, is_me, identity_hash,
	preview_key, preview_type, preview_url,
	medium_key, medium_type, medium_url`

// a row stored as self stays self, with its locale, when re-ingested
// through the plain path
const upsertUserSQL = `
	INSERT INTO users (
		id, name, email, phone, username, accent_id, locale, is_me, identity_hash,
		preview_key, preview_type, preview_url,
		medium_key, medium_type, medium_url,
		created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15, now(), now())
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		email = EXCLUDED.email,
		phone = EXCLUDED.phone,
		username = EXCLUDED.username,
		accent_id = EXCLUDED.accent_id,
		locale = CASE WHEN users.is_me AND NOT EXCLUDED.is_me THEN users.locale ELSE EXCLUDED.locale END,
		is_me = users.is_me OR EXCLUDED.is_me,
		preview_key = EXCLUDED.preview_key,
		preview_type = EXCLUDED.preview_type,
		preview_url = EXCLUDED.preview_url,
		medium_key = EXCLUDED.medium_key,
		medium_type = EXCLUDED.medium_type,
		medium_url = EXCLUDED.medium_url,
		updated_at = now()
	RETURNING ` + selectUserColumns

// id, is_me and identity_hash never change after insert
const updateUserSQL = `
	UPDATE users SET
		name = $2, email = $3, phone = $4, username = $5, accent_id = $6, locale = $7,
		preview_key = $8, preview_type = $9, preview_url = $10,
		medium_key = $11, medium_type = $12, medium_url = $13,
		updated_at = now()
	WHERE id = $1`

func (r *UsersRepo) Upsert(ctx context.Context, u *user.User) (*user.User, error) {
	var out *user.User

	err := r.prom.ObserveStore("upsert", func() error {
		var err error
		out, err = scanUser(r.pool.QueryRow(ctx, upsertUserSQL, upsertArgs(u)...))
		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *UsersRepo) UpsertMany(ctx context.Context, us []*user.User) ([]*user.User, error) {
	out := make([]*user.User, 0, len(us))
	if len(us) == 0 {
		return out, nil
	}

	err := r.prom.ObserveStore("upsert_many", func() (err error) {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return err
		}

		defer func() {
			_ = tx.Rollback(ctx)
		}()

		batch := &pgx.Batch{}
		for _, u := range us {
			batch.Queue(upsertUserSQL, upsertArgs(u)...)
		}

		br := tx.SendBatch(ctx, batch)
		for range us {
			stored, err := scanUser(br.QueryRow())
			if err != nil {
				_ = br.Close()
				return err
			}
			out = append(out, stored)
		}

		if err = br.Close(); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	var u *user.User

	err := r.prom.ObserveStore("get", func() error {
		row := r.pool.QueryRow(ctx, `SELECT `+selectUserColumns+` FROM users WHERE id = $1`, id)

		var err error
		u, err = scanUser(row)
		return err
	})
	if err != nil {
		return nil, err
	}

	return u, nil
}

// Update locks the row, hands it to fn and writes back whatever fn left.
// Nothing is written when fn fails.
func (r *UsersRepo) Update(ctx context.Context, id string, fn func(*user.User) error) (*user.User, error) {
	var out *user.User

	err := r.prom.ObserveStore("update", func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return err
		}

		defer func() {
			_ = tx.Rollback(ctx)
		}()

		row := tx.QueryRow(ctx, `SELECT `+selectUserColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)

		u, err := scanUser(row)
		if err != nil {
			return err
		}

		if err := fn(u); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, updateUserSQL, updateArgs(u)...); err != nil {
			return fmt.Errorf("update user %s: %w", id, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	return r.prom.ObserveStore("delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return user.ErrUserNotFound
		}
		return nil
	})
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		u          user.User
		accent     int
		hash       int64
		pk, pt, pu *string
		mk, mt, mu *string
	)

	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.Username, &accent, &u.Locale, &u.IsMe, &hash,
		&pk, &pt, &pu,
		&mk, &mt, &mu,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}

	u.AccentID = user.AccentID(accent)
	u.IdentityHash = uint32(hash)
	u.PreviewPicture = pictureFromColumns(pk, pt, pu)
	u.MediumPicture = pictureFromColumns(mk, mt, mu)

	return &u, nil
}

func pictureFromColumns(key, typ, url *string) *user.PictureResource {
	if key == nil || url == nil {
		return nil
	}

	p := &user.PictureResource{Key: *key, URL: *url}
	if typ != nil {
		p.Type = *typ
	}
	return p
}

func pictureColumns(p *user.PictureResource) (key, typ, url *string) {
	if p == nil {
		return nil, nil, nil
	}
	return &p.Key, &p.Type, &p.URL
}

func upsertArgs(u *user.User) []any {
	pk, pt, pu := pictureColumns(u.PreviewPicture)
	mk, mt, mu := pictureColumns(u.MediumPicture)

	return []any{
		u.ID, u.Name, u.Email, u.Phone, u.Username, int(u.AccentID), u.Locale, u.IsMe, int64(u.IdentityHash),
		pk, pt, pu,
		mk, mt, mu,
	}
}

func updateArgs(u *user.User) []any {
	pk, pt, pu := pictureColumns(u.PreviewPicture)
	mk, mt, mu := pictureColumns(u.MediumPicture)

	return []any{
		u.ID, u.Name, u.Email, u.Phone, u.Username, int(u.AccentID), u.Locale,
		pk, pt, pu,
		mk, mt, mu,
	}
}
