package services

import (
	"testing"

	"github.com/CampusLease/initializers"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	original := initializers.DB
	initializers.DB = goqu.New(initializers.DialectSQLite, db)
	t.Cleanup(func() {
		initializers.DB = original
		db.Close()
	})
	return mock
}

var threadColumns = []string{
	"id", "property_id", "property_title", "participant_name", "participant_email",
	"owner_user_id", "created_at", "updated_at",
}

var messageColumns = []string{
	"id", "thread_id", "sender", "sender_email", "recipient", "recipient_email",
	"content", "sender_user_id", "created_at", "read",
}
