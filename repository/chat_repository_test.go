package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"titanic_chat_backend/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return gdb, mock
}

func TestCreateInsertsRecord(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewChatRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "chat_records"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), &models.ChatRecord{
		ID:        "rec-1",
		Question:  "How many survived?",
		Answer:    "342 passengers survived.",
		Code:      "func Run() (string, error) { ... }",
		HasChart:  false,
		LatencyMs: 1250,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentOrdersByNewest(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewChatRepository(gdb)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "question", "answer", "code", "has_chart", "latency_ms", "created_at"}).
		AddRow("rec-2", "q2", "a2", "", false, 900, now).
		AddRow("rec-1", "q1", "a1", "", true, 1500, now.Add(-time.Minute))

	mock.ExpectQuery(`SELECT \* FROM "chat_records" ORDER BY created_at DESC`).
		WillReturnRows(rows)

	records, err := repo.ListRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "rec-2", records[0].ID)
	assert.True(t, records[1].HasChart)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentPropagatesError(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewChatRepository(gdb)

	mock.ExpectQuery(`SELECT \* FROM "chat_records"`).
		WillReturnError(gorm.ErrInvalidDB)

	_, err := repo.ListRecent(context.Background(), 5)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
