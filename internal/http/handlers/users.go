package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/userdir/internal/cache"
	"github.com/geocoder89/userdir/internal/domain/user"
	"github.com/geocoder89/userdir/internal/http/middlewares"
	"github.com/geocoder89/userdir/internal/mapper"
	"github.com/geocoder89/userdir/internal/observability"
	"github.com/geocoder89/userdir/internal/payload"
	"github.com/geocoder89/userdir/internal/utils"
	"github.com/gin-gonic/gin"
)

type UsersStore interface {
	Upsert(ctx context.Context, u *user.User) (*user.User, error)
	UpsertMany(ctx context.Context, us []*user.User) ([]*user.User, error)
	GetByID(ctx context.Context, id string) (*user.User, error)
	Update(ctx context.Context, id string, fn func(*user.User) error) (*user.User, error)
}

type UsersHandler struct {
	store  UsersStore
	mapper *mapper.Mapper
	cache  *cache.Cache[*user.User]
	prom   *observability.Prom
	log    *slog.Logger
}

// NewUsersHandler wires the handler. cache and prom may be nil.
func NewUsersHandler(store UsersStore, m *mapper.Mapper, c *cache.Cache[*user.User], prom *observability.Prom, log *slog.Logger) *UsersHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UsersHandler{store: store, mapper: m, cache: c, prom: prom, log: log}
}

func (h *UsersHandler) remember(u *user.User) {
	if h.cache != nil {
		h.cache.Set(utils.UserCacheKey(u.ID), u)
	}
}

func (h *UsersHandler) forget(id string) {
	if h.cache != nil {
		h.cache.Delete(utils.UserCacheKey(id))
	}
}

// CreateUser maps one payload and stores the record.
func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	h.create(ctx, "user", h.mapper.MapUserJSON)
}

// CreateSelf maps the authenticated account's own payload.
func (h *UsersHandler) CreateSelf(ctx *gin.Context) {
	h.create(ctx, "self", h.mapper.MapSelfUserJSON)
}

func (h *UsersHandler) create(ctx *gin.Context, path string, mapFn func([]byte) (*user.User, error)) {
	body, err := ctx.GetRawData()
	if err != nil {
		RespondPayloadError(ctx, err, &payload.User{})
		return
	}

	u, err := mapFn(body)
	if err != nil {
		h.prom.IncRejected("invalid_payload")
		RespondPayloadError(ctx, err, &payload.User{})
		return
	}
	if u == nil {
		RespondBadRequest(ctx, "Request body must be a user object", nil)
		return
	}

	ctx.Set(middlewares.CtxUserID, u.ID)

	stored, err := h.store.Upsert(ctx.Request.Context(), u)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "store user failed", "user_id", u.ID, "err", err)
		RespondInternal(ctx, "Could not store user")
		return
	}

	h.remember(stored)
	h.prom.IncMapped(path, 1)

	ctx.JSON(http.StatusCreated, stored)
}

// CreateUsers maps a list of payloads in order and stores them together.
func (h *UsersHandler) CreateUsers(ctx *gin.Context) {
	body, err := ctx.GetRawData()
	if err != nil {
		RespondPayloadError(ctx, err, &payload.User{})
		return
	}

	us, err := h.mapper.MapUsersJSON(body)
	if err != nil {
		h.prom.IncRejected("invalid_payload")
		RespondPayloadError(ctx, err, &payload.User{})
		return
	}

	stored, err := h.store.UpsertMany(ctx.Request.Context(), us)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "store users failed", "count", len(us), "err", err)
		RespondInternal(ctx, "Could not store users")
		return
	}

	for _, u := range stored {
		h.remember(u)
	}
	h.prom.IncMapped("batch", len(stored))

	ctx.JSON(http.StatusCreated, gin.H{
		"items": stored,
		"count": len(stored),
	})
}

func (h *UsersHandler) GetUser(ctx *gin.Context) {
	id := ctx.Param("id")
	ctx.Set(middlewares.CtxUserID, id)

	if h.cache != nil {
		if u, ok := h.cache.Get(utils.UserCacheKey(id)); ok {
			ctx.Header("X-Cache", "HIT")
			RespondJSONWithETag(ctx, http.StatusOK, u)
			return
		}
	}

	u, err := h.store.GetByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "load user failed", "user_id", id, "err", err)
		RespondInternal(ctx, "Could not fetch user")
		return
	}

	h.remember(u)
	ctx.Header("X-Cache", "MISS")
	RespondJSONWithETag(ctx, http.StatusOK, u)
}

// PatchUser applies a sparse change payload to a stored record.
// The body id must name the record in the path; nothing is written otherwise.
func (h *UsersHandler) PatchUser(ctx *gin.Context) {
	id := ctx.Param("id")
	ctx.Set(middlewares.CtxUserID, id)

	body, err := ctx.GetRawData()
	if err != nil {
		RespondPayloadError(ctx, err, &payload.User{})
		return
	}

	patch, err := payload.DecodeUser(body)
	if err != nil {
		h.prom.IncRejected("invalid_payload")
		RespondPayloadError(ctx, err, &payload.User{})
		return
	}
	if patch == nil {
		RespondBadRequest(ctx, "Request body must be a user object", nil)
		return
	}

	if patch.ID != id {
		h.prom.IncRejected("identity_mismatch")
		RespondConflict(ctx, "identity_mismatch", "Patch id does not match the user being updated", gin.H{
			"pathId":  id,
			"patchId": patch.ID,
		})
		return
	}

	updated, err := h.store.Update(ctx.Request.Context(), id, func(u *user.User) error {
		_, err := h.mapper.UpdateUser(u, *patch)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUserNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, user.ErrIdentityMismatch):
			h.prom.IncRejected("identity_mismatch")
			RespondConflict(ctx, "identity_mismatch", "Patch id does not match the user being updated", nil)
		default:
			h.log.ErrorContext(ctx.Request.Context(), "update user failed", "user_id", id, "err", err)
			RespondInternal(ctx, "Could not update user")
		}
		return
	}

	h.forget(id)
	h.remember(updated)
	h.prom.IncMapped("update", 1)

	ctx.JSON(http.StatusOK, updated)
}
