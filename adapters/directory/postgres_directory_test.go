package directory

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/walletauth/core"
)

const findQuery = `SELECT id, address, created_at, last_seen FROM wallet_users WHERE address = $1`

func TestPostgresDirectory_FindByAddress(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
		want    *core.User
	}{
		{
			name: "found",
			setup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "address", "created_at", "last_seen"}).
					AddRow("u1", "0xabc", now, now)
				mock.ExpectQuery(regexp.QuoteMeta(findQuery)).WithArgs("0xabc").WillReturnRows(rows)
			},
			want: &core.User{ID: "u1", Address: "0xabc", CreatedAt: now, LastSeen: now},
		},
		{
			name: "not found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(findQuery)).WithArgs("0xabc").
					WillReturnRows(sqlmock.NewRows([]string{"id", "address", "created_at", "last_seen"}))
			},
			wantErr: core.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.setup(mock)
			got, err := NewPostgresDirectory(db).FindByAddress(context.Background(), "0xabc")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresDirectory_FindByAddress_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(findQuery)).WillReturnError(errors.New("connection reset"))

	_, err = NewPostgresDirectory(db).FindByAddress(context.Background(), "0xabc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrUserNotFound)
}

func TestPostgresDirectory_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seen := created.Add(48 * time.Hour)

	mock.ExpectQuery(`INSERT INTO wallet_users .* ON CONFLICT \(address\) DO UPDATE SET last_seen`).
		WithArgs("u2", "0xabc", seen, seen).
		WillReturnRows(sqlmock.NewRows([]string{"id", "address", "created_at", "last_seen"}).
			AddRow("u1", "0xabc", created, seen))

	saved, err := NewPostgresDirectory(db).Upsert(context.Background(), &core.User{
		ID: "u2", Address: "0xabc", CreatedAt: seen, LastSeen: seen,
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", saved.ID)
	assert.Equal(t, created, saved.CreatedAt)
	assert.Equal(t, seen, saved.LastSeen)
	require.NoError(t, mock.ExpectationsWereMet())
}
