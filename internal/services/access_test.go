package services_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"arthemis/internal/models"
	"arthemis/internal/repositories"
	"arthemis/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestActor_CanMutate(t *testing.T) {
	owner := services.Actor{ID: "u1", Role: models.RoleArtist}
	admin := services.Actor{ID: "a1", Role: models.RoleAdmin}
	other := services.Actor{ID: "u2", Role: models.RoleArtist}

	assert.NoError(t, owner.CanMutate("u1", "update", "artwork"))
	assert.NoError(t, admin.CanMutate("u1", "update", "artwork"))

	err := other.CanMutate("u1", "delete", "artwork")
	assert.True(t, errors.Is(err, services.ErrUnauthorized))
	assert.EqualError(t, err, "User u2 is not authorized to delete this artwork")

	assert.Error(t, services.Actor{}.CanMutate("", "update", "artwork"), "anonymous actors never own anything")
}

func TestActor_RequireOwner(t *testing.T) {
	owner := services.Actor{ID: "u1", Role: models.RoleUser}
	admin := services.Actor{ID: "a1", Role: models.RoleAdmin}

	assert.NoError(t, owner.RequireOwner("u1", "update", "collection"))
	err := admin.RequireOwner("u1", "update", "collection")
	assert.EqualError(t, err, "User a1 is not authorized to update this collection")
}

func TestActor_RequireRole(t *testing.T) {
	artist := services.Actor{ID: "u1", Role: models.RoleArtist}
	user := services.Actor{ID: "u2", Role: models.RoleUser}

	assert.NoError(t, artist.RequireRole("add an artwork", models.RoleArtist, models.RoleAdmin))
	err := user.RequireRole("add an artwork", models.RoleArtist, models.RoleAdmin)
	assert.Equal(t, services.KindUnauthorized, services.KindOf(err))
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name  string
		page  services.PageRequest
		total int64
		next  *services.PageCursor
		prev  *services.PageCursor
		skip  int
	}{
		{"first page", services.PageRequest{Page: 1, Limit: 12}, 25, &services.PageCursor{Page: 2, Limit: 12}, nil, 0},
		{"middle page", services.PageRequest{Page: 2, Limit: 12}, 25, &services.PageCursor{Page: 3, Limit: 12}, &services.PageCursor{Page: 1, Limit: 12}, 12},
		{"last page", services.PageRequest{Page: 3, Limit: 12}, 25, nil, &services.PageCursor{Page: 2, Limit: 12}, 24},
		{"exact fit", services.PageRequest{Page: 1, Limit: 12}, 12, nil, nil, 0},
		{"empty", services.PageRequest{Page: 1, Limit: 12}, 0, nil, nil, 0},
		{"defaults", services.PageRequest{}, 30, &services.PageCursor{Page: 2, Limit: 12}, nil, 0},
		{"capped limit", services.PageRequest{Page: 1, Limit: 500}, 150, &services.PageCursor{Page: 2, Limit: 100}, nil, 0},
		{"capped page", services.PageRequest{Page: 1 << 62, Limit: 100}, 10, nil, &services.PageCursor{Page: math.MaxInt/100 - 1, Limit: 100}, (math.MaxInt/100 - 1) * 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pg := services.Paginate(tt.page, tt.total)
			assert.Equal(t, tt.next, pg.Next)
			assert.Equal(t, tt.prev, pg.Prev)
			assert.Equal(t, tt.skip, tt.page.Normalize().Skip())
		})
	}
}

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("loading artwork: %w", services.ErrNotFound)
	assert.Equal(t, services.KindNotFound, services.KindOf(err))
	assert.True(t, errors.Is(err, services.ErrNotFound))
	assert.False(t, errors.Is(err, services.ErrConflict))

	assert.Equal(t, services.KindInternal, services.KindOf(repositories.ErrNotFound))
	assert.Equal(t, "validation_failed", services.KindValidation.String())

	wrapped := &services.Error{Kind: services.KindUpstream, Message: "Image upload failed", Err: errors.New("timeout")}
	assert.EqualError(t, wrapped, "Image upload failed: timeout")
	assert.EqualError(t, errors.Unwrap(wrapped), "timeout")
}
