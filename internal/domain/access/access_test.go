package access

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocations map[uuid.UUID]uuid.UUID

func (f fakeLocations) ManagerOf(ctx context.Context, locationID uuid.UUID) (uuid.UUID, error) {
	id, ok := f[locationID]
	if !ok {
		return uuid.Nil, ErrLocationNotFound
	}
	return id, nil
}

type failingLocations struct{}

func (failingLocations) ManagerOf(ctx context.Context, locationID uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, errors.New("connection reset")
}

type booking struct{ artist, location uuid.UUID }

func (b booking) OwnerID() uuid.UUID         { return b.artist }
func (b booking) OwnerLocationID() uuid.UUID { return b.location }

func TestBookingRelation(t *testing.T) {
	artist, manager, stranger, otherManager := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	location := uuid.New()
	checker := NewChecker(fakeLocations{location: manager})
	b := booking{artist: artist, location: location}

	tests := []struct {
		name string
		p    Principal
		want Relation
	}{
		{"artist", Principal{artist, RoleArtist}, RelationArtist},
		{"manager", Principal{manager, RoleManager}, RelationManager},
		{"admin", Principal{stranger, RoleAdmin}, RelationAdmin},
		{"other artist", Principal{stranger, RoleArtist}, RelationNone},
		{"other manager", Principal{otherManager, RoleManager}, RelationNone},
		{"anonymous", Principal{}, RelationNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checker.BookingRelation(context.Background(), tt.p, b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBookingRelationUnknownLocation(t *testing.T) {
	checker := NewChecker(fakeLocations{})
	got, err := checker.BookingRelation(context.Background(),
		Principal{uuid.New(), RoleManager}, booking{uuid.New(), uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, RelationNone, got)
}

func TestCanManageLocationPropagatesLookupErrors(t *testing.T) {
	_, err := NewChecker(failingLocations{}).CanManageLocation(context.Background(),
		Principal{uuid.New(), RoleManager}, uuid.New())
	assert.Error(t, err)
}

func TestArtistNeverManages(t *testing.T) {
	user, location := uuid.New(), uuid.New()
	ok, err := NewChecker(fakeLocations{location: user}).CanManageLocation(context.Background(),
		Principal{user, RoleArtist}, location)
	require.NoError(t, err)
	assert.False(t, ok)
}
