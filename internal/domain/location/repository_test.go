package location

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/wallspace/wallspace-api/internal/domain/access"
)

func newMockRepo(t *testing.T) (*repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &repository{db: sqlx.NewDb(db, "postgres")}, mock
}

func TestManagerOfUnknownLocation(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT manager_id FROM locations WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"manager_id"}))

	_, err := repo.ManagerOf(context.Background(), id)
	if !errors.Is(err, access.ErrLocationNotFound) {
		t.Fatalf("expected access.ErrLocationNotFound, got %v", err)
	}
}

func TestCreateSpaceMapsMissingLocation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO spaces")).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "spaces_location_id_fkey"})

	err := repo.CreateSpace(context.Background(), &Space{ID: uuid.New(), LocationID: uuid.New(), Name: "Left wall", Capacity: 1})
	if !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
}

func TestUpdateSpaceMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	closed := true

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE spaces SET")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.UpdateSpace(context.Background(), uuid.New(), SpacePatch{IsClosed: &closed})
	if !errors.Is(err, ErrSpaceNotFound) {
		t.Fatalf("expected ErrSpaceNotFound, got %v", err)
	}
}

func TestGetSpaceJoinsLocation(t *testing.T) {
	repo, mock := newMockRepo(t)
	spaceID, locationID, managerID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "location_id", "name", "width_cm", "height_cm", "capacity", "daily_price",
		"is_closed", "image_url", "created_at", "updated_at", "location_name", "manager_id",
	}).AddRow(spaceID.String(), locationID.String(), "Window wall", 200, 150, 1, int64(30000),
		false, nil, now, now, "Cafe Onion", managerID.String())

	mock.ExpectQuery(regexp.QuoteMeta("JOIN locations l ON l.id = s.location_id")).
		WithArgs(spaceID).
		WillReturnRows(rows)

	s, err := repo.GetSpace(context.Background(), spaceID)
	if err != nil {
		t.Fatalf("GetSpace: %v", err)
	}
	if s.ManagerID != managerID || s.LocationName != "Cafe Onion" || s.DailyPrice != 30000 {
		t.Fatalf("unexpected space: %+v", s)
	}
	if s.ImageURL.Valid {
		t.Fatalf("expected NULL image_url")
	}
}

func TestListLocationsFiltersByCity(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM locations")).
		WithArgs("Seoul").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT $2 OFFSET $3")).
		WithArgs("Seoul", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, total, err := repo.ListLocations(context.Background(), ListFilter{City: "Seoul"}, 20, 0)
	if err != nil {
		t.Fatalf("ListLocations: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("expected empty result, got %d/%d", len(items), total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
