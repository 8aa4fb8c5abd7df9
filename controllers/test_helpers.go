package controllers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CampusLease/initializers"
	"github.com/CampusLease/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
)

// SetupTestDB creates a mock database and sets it as the global DB for testing
func SetupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}

	// Store originals to restore after test
	originalDB := initializers.DB
	originalDialect := initializers.Dialect
	originalLegacy := initializers.HasLegacySqft

	initializers.DB = goqu.New(initializers.DialectSQLite, db)
	initializers.Dialect = initializers.DialectSQLite
	initializers.HasLegacySqft = false

	cleanup := func() {
		// Small delay to allow goroutines (like push notifications) to complete
		time.Sleep(10 * time.Millisecond)
		db.Close()
		initializers.DB = originalDB
		initializers.Dialect = originalDialect
		initializers.HasLegacySqft = originalLegacy
	}

	return db, mock, cleanup
}

// SetupTestContext creates a test Gin context with a response recorder
func SetupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

// SetAuthenticatedUser sets the currentUser value in the Gin context
// This simulates what the CheckAuth middleware does
func SetAuthenticatedUser(c *gin.Context, user models.User) {
	c.Set("currentUser", user)
}

// SetAdminSession simulates what the CheckAdmin middleware does
func SetAdminSession(c *gin.Context, email string) {
	c.Set("admin", models.AdminSession{Email: email, Role: models.AdminRole})
}

// newJSONRequest attaches a request whose body is body marshalled to JSON, or
// body itself when it is a raw string.
func newJSONRequest(c *gin.Context, method, target string, body interface{}) {
	var data []byte
	switch b := body.(type) {
	case nil:
	case string:
		data = []byte(b)
	default:
		data, _ = json.Marshal(b)
	}
	c.Request = httptest.NewRequest(method, target, bytes.NewBuffer(data))
	c.Request.Header.Set("Content-Type", "application/json")
}

func decodeBody(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &response)
	return response
}

func decodeInto(w *httptest.ResponseRecorder, dst interface{}) error {
	return json.Unmarshal(w.Body.Bytes(), dst)
}

func setLegacySqft(t *testing.T) {
	t.Helper()
	initializers.HasLegacySqft = true
	t.Cleanup(func() { initializers.HasLegacySqft = false })
}
