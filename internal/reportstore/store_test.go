package reportstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "rcm-benchmark/internal/common/errors"
)

var columns = []string{
	"id", "hospital_name", "hospital_beds", "state", "recipient_name",
	"recipient_email", "origin", "document", "delivery", "created_at",
}

func testRecord(id string, createdAt time.Time) *Record {
	return &Record{
		ID:             id,
		HospitalName:   "General Hospital",
		HospitalBeds:   250,
		State:          "US",
		RecipientName:  "Jane Smith",
		RecipientEmail: "jane@example.org",
		Origin:         "api",
		Document:       json.RawMessage(`{"metrics":{"potential_savings":195216}}`),
		CreatedAt:      createdAt,
	}
}

func newMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS rcm_reports").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Save(t *testing.T) {
	now := time.Now().UTC()

	t.Run("inserts row", func(t *testing.T) {
		store, mock := newMock(t)
		rec := testRecord("7c4d6c32-6127-42df-958a-bf6c54f13b71", now)
		mock.ExpectExec("INSERT INTO rcm_reports").
			WithArgs(rec.ID, rec.HospitalName, rec.HospitalBeds, rec.State,
				sqlmock.AnyArg(), sqlmock.AnyArg(), rec.Origin, sqlmock.AnyArg(), nil, now).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, store.Save(context.Background(), rec))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error is a store failure", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec("INSERT INTO rcm_reports").WillReturnError(errors.New("connection reset"))

		err := store.Save(context.Background(), testRecord("id-1", now))
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeReportStoreFailed))
	})
}

func TestPostgresStore_Get(t *testing.T) {
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM rcm_reports WHERE id").
			WithArgs("id-1").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				"id-1", "General Hospital", 250, "US", "Jane Smith", nil, "api",
				[]byte(`{"a":1}`), []byte(`{"clay_webhook_status":"success"}`), now))

		rec, err := store.Get(context.Background(), "id-1")
		require.NoError(t, err)
		assert.Equal(t, "General Hospital", rec.HospitalName)
		assert.Equal(t, "Jane Smith", rec.RecipientName)
		assert.Equal(t, "", rec.RecipientEmail)
		assert.JSONEq(t, `{"a":1}`, string(rec.Document))
		assert.JSONEq(t, `{"clay_webhook_status":"success"}`, string(rec.Delivery))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM rcm_reports WHERE id").
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := store.Get(context.Background(), "nope")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeReportNotFound))
	})
}

func TestPostgresStore_UpdateDelivery(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec("UPDATE rcm_reports SET delivery").
			WithArgs([]byte(`{"x":1}`), "id-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.UpdateDelivery(context.Background(), "id-1", json.RawMessage(`{"x":1}`)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec("UPDATE rcm_reports SET delivery").WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.UpdateDelivery(context.Background(), "nope", json.RawMessage(`{}`))
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeReportNotFound))
	})
}

func TestPostgresStore_Find(t *testing.T) {
	now := time.Now().UTC()

	t.Run("no filter", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM rcm_reports$`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(120))
		mock.ExpectQuery("SELECT (.+) FROM rcm_reports ORDER BY created_at DESC LIMIT").
			WithArgs(defaultListLimit).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("id-2", "B", 100, "CA", nil, nil, "webhook", []byte(`{}`), nil, now).
				AddRow("id-1", "A", 50, "TX", nil, nil, "api", []byte(`{}`), nil, now.Add(-time.Hour)))

		recs, total, err := store.Find(context.Background(), Filter{})
		require.NoError(t, err)
		assert.Equal(t, 120, total)
		require.Len(t, recs, 2)
		assert.Equal(t, "id-2", recs[0].ID)
		assert.Nil(t, recs[0].Delivery)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filters are applied in SQL", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM rcm_reports WHERE state = \$1 AND hospital_name ILIKE \$2 AND hospital_beds >= \$3`).
			WithArgs("CA", "%mercy%", 100).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT (.+) FROM rcm_reports WHERE (.+) ORDER BY created_at DESC LIMIT \$4`).
			WithArgs("CA", "%mercy%", 100, 10).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("id-2", "Mercy", 150, "CA", nil, nil, "api", []byte(`{}`), nil, now))

		recs, total, err := store.Find(context.Background(), Filter{State: "ca", Hospital: "mercy", MinBeds: 100, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, recs, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, testRecord(fmt.Sprintf("id-%d", i), now.Add(time.Duration(i)*time.Minute))))
	}

	rec, err := store.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "General Hospital", rec.HospitalName)

	rec.Document[0] = 'X'
	again, err := store.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, byte('{'), again.Document[0])

	require.NoError(t, store.UpdateDelivery(ctx, "id-1", json.RawMessage(`{"email_status":"sent"}`)))
	again, err = store.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"email_status":"sent"}`, string(again.Delivery))

	_, err = store.Get(ctx, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeReportNotFound))
	assert.True(t, apperrors.HasCode(store.UpdateDelivery(ctx, "missing", nil), apperrors.ErrCodeReportNotFound))

	list, total, err := store.Find(ctx, Filter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, "id-2", list[0].ID)
	assert.Equal(t, "id-1", list[1].ID)
}

func TestMemoryStore_FindFiltersBeforeLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now().UTC()

	old := testRecord("old-match", now.Add(-24*time.Hour))
	old.State = "CA"
	require.NoError(t, store.Save(ctx, old))
	for i := 0; i < defaultListLimit+5; i++ {
		require.NoError(t, store.Save(ctx, testRecord(fmt.Sprintf("id-%d", i), now.Add(time.Duration(i)*time.Second))))
	}

	list, total, err := store.Find(ctx, Filter{State: "ca"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "old-match", list[0].ID)

	list, total, err = store.Find(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, defaultListLimit+6, total)
	assert.Len(t, list, defaultListLimit)
}
