package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CampusLease/initializers"
	"github.com/CampusLease/middlewares"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func configureAdmin(t *testing.T, email, password string) {
	t.Helper()
	original := initializers.Cfg
	initializers.Cfg.AdminEmail = email
	initializers.Cfg.AdminPassword = password
	t.Cleanup(func() { initializers.Cfg = original })
}

func TestAdminLogin(t *testing.T) {
	tests := []struct {
		name           string
		adminEmail     string
		requestBody    interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "valid credentials",
			adminEmail:     "admin@campuslease.com",
			requestBody:    map[string]interface{}{"email": " Admin@CampusLease.com ", "password": "s3cret-admin"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong password",
			adminEmail:     "admin@campuslease.com",
			requestBody:    map[string]interface{}{"email": "admin@campuslease.com", "password": "guess"},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid admin credentials",
		},
		{
			name:           "admin not configured",
			adminEmail:     "",
			requestBody:    map[string]interface{}{"email": "admin@campuslease.com", "password": "s3cret-admin"},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid admin credentials",
		},
		{
			name:           "missing password",
			adminEmail:     "admin@campuslease.com",
			requestBody:    map[string]interface{}{"email": "admin@campuslease.com"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Email and password are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configureAdmin(t, tt.adminEmail, "s3cret-admin")

			c, w := SetupTestContext()
			newJSONRequest(c, "POST", "/api/admin/login", tt.requestBody)

			AdminLogin(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			response := decodeBody(w)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, response["error"])
			} else {
				assert.Equal(t, "admin@campuslease.com", response["email"])
				assert.Equal(t, "admin", response["role"])
				assert.Contains(t, w.Header().Get("Set-Cookie"), middlewares.AdminCookie+"=ey")
			}
		})
	}
}

func TestAdminMe(t *testing.T) {
	c, w := SetupTestContext()
	SetAdminSession(c, "admin@campuslease.com")
	c.Request = httptest.NewRequest("GET", "/api/admin/me", nil)

	AdminMe(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"email": "admin@campuslease.com", "role": "admin"}, decodeBody(w))
}

func TestAdminGetStats(t *testing.T) {
	_, mock, cleanup := SetupTestDB(t)
	defer cleanup()

	for i, table := range []string{"users", "listings", "applications", "threads", "messages"} {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS `count` FROM `" + table + "`").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(i + 1))
	}

	c, w := SetupTestContext()
	c.Request = httptest.NewRequest("GET", "/api/admin/stats", nil)

	AdminGetStats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{
		"users": float64(1), "listings": float64(2), "applications": float64(3),
		"threads": float64(4), "messages": float64(5),
	}, decodeBody(w))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminGetUsersHidesPasswordHashes(t *testing.T) {
	_, mock, cleanup := SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("FROM `users` ORDER BY `created_at` DESC, `id` DESC").
		WillReturnRows(userRows(MockOtherUser(), MockUserWithPassword()))

	c, w := SetupTestContext()
	c.Request = httptest.NewRequest("GET", "/api/admin/users", nil)

	AdminGetUsers(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var users []map[string]interface{}
	assert.NoError(t, decodeInto(w, &users))
	if assert.Len(t, users, 2) {
		assert.Equal(t, float64(2), users[0]["id"])
		assert.NotContains(t, users[1], "password_hash")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminGetApplicationsIncludesListingTitle(t *testing.T) {
	_, mock, cleanup := SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT `applications`.\\*, `listings`.`title` AS `listing_title` FROM `applications` LEFT JOIN `listings`").
		WillReturnRows(sqlmock.NewRows(append(applicationColumns, "listing_title")).
			AddRow(12, 7, "Test User", "test@example.com", nil, "Hi", 1, fixtureTimestamp, "Sunny studio near campus").
			AddRow(11, 99, "Other User", "other@example.com", nil, nil, 2, fixtureTimestamp, nil))

	c, w := SetupTestContext()
	c.Request = httptest.NewRequest("GET", "/api/admin/applications", nil)

	AdminGetApplications(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var applications []map[string]interface{}
	assert.NoError(t, decodeInto(w, &applications))
	if assert.Len(t, applications, 2) {
		assert.Equal(t, "Sunny studio near campus", applications[0]["listing_title"])
		assert.Equal(t, float64(12), applications[0]["id"])
		assert.Nil(t, applications[1]["listing_title"])
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminGetLoginEvents(t *testing.T) {
	_, mock, cleanup := SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("FROM `login_events` ORDER BY `created_at` DESC, `id` DESC LIMIT 100").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "email", "event_type", "created_at"}).
			AddRow(2, 1, "test@example.com", "login", fixtureTimestamp).
			AddRow(1, 1, "test@example.com", "register", fixtureTimestamp))

	c, w := SetupTestContext()
	c.Request = httptest.NewRequest("GET", "/api/admin/login-events", nil)

	AdminGetLoginEvents(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var events []map[string]interface{}
	assert.NoError(t, decodeInto(w, &events))
	assert.Len(t, events, 2)
	assert.Equal(t, "login", events[0]["event_type"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminUpdateListing(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		requestBody    interface{}
		setupMocks     func(mock sqlmock.Sqlmock)
		expectedStatus int
		expectedError  string
	}{
		{
			name:        "partial body merged over the stored listing",
			id:          "7",
			requestBody: map[string]interface{}{"status": "leased", "owner": map[string]interface{}{"phone": "206-555-0111"}},
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM `listings` WHERE \\(`id` = 7\\)").
					WillReturnRows(listingRows(MockListingRow(7, intPtr(2))))
				mock.ExpectExec("UPDATE `listings` SET .*`owner_phone`='206-555-0111'.*`status`='leased'.*WHERE \\(`id` = 7\\)").
					WillReturnResult(sqlmock.NewResult(0, 1))
				leased := MockListingRow(7, intPtr(2))
				leased.Status = "leased"
				mock.ExpectQuery("FROM `listings` WHERE \\(`id` = 7\\)").WillReturnRows(listingRows(leased))
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "merged result still validated",
			id:          "7",
			requestBody: map[string]interface{}{"price": 0},
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM `listings`").WillReturnRows(listingRows(MockListingRow(7, intPtr(2))))
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid payload",
		},
		{
			name:        "missing listing",
			id:          "404",
			requestBody: map[string]interface{}{"status": "leased"},
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM `listings`").WillReturnRows(sqlmock.NewRows(listingColumns))
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "Listing not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mock, cleanup := SetupTestDB(t)
			defer cleanup()
			tt.setupMocks(mock)

			c, w := SetupTestContext()
			SetAdminSession(c, "admin@campuslease.com")
			c.Params = gin.Params{{Key: "id", Value: tt.id}}
			newJSONRequest(c, "PUT", "/api/admin/listings/"+tt.id, tt.requestBody)

			AdminUpdateListing(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			response := decodeBody(w)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, response["error"])
			} else {
				assert.Equal(t, "leased", response["status"])
				assert.Equal(t, "2", response["ownerId"])
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdminDeleteListingMissing(t *testing.T) {
	_, mock, cleanup := SetupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `applications`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT `id` FROM `threads`").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("DELETE FROM `threads`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `listings`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	c, w := SetupTestContext()
	c.Params = gin.Params{{Key: "id", Value: "404"}}
	c.Request = httptest.NewRequest("DELETE", "/api/admin/listings/404", nil)

	AdminDeleteListing(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Listing not found", decodeBody(w)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminUpdateUser(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		requestBody    interface{}
		setupMocks     func(mock sqlmock.Sqlmock)
		expectedStatus int
		expectedError  string
	}{
		{
			name:        "rename keeps email",
			id:          "1",
			requestBody: map[string]interface{}{"name": " Renamed User "},
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM `users` WHERE \\(`id` = 1\\)").WillReturnRows(userRows(MockUser()))
				mock.ExpectExec("UPDATE `users` SET `email`='test@example.com',`name`='Renamed User' WHERE \\(`id` = 1\\)").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "new password is hashed",
			id:          "1",
			requestBody: map[string]interface{}{"password": "brandnewpass"},
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM `users`").WillReturnRows(userRows(MockUser()))
				mock.ExpectExec("UPDATE `users` SET .*`password_hash`='\\$2a\\$").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "email taken",
			id:          "1",
			requestBody: map[string]interface{}{"email": "other@example.com"},
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM `users`").WillReturnRows(userRows(MockUser()))
				mock.ExpectExec("UPDATE `users`").WillReturnError(&pq.Error{Code: "23505"})
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Email already registered",
		},
		{
			name:        "invalid email",
			id:          "1",
			requestBody: map[string]interface{}{"email": "nope"},
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM `users`").WillReturnRows(userRows(MockUser()))
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Email is invalid",
		},
		{
			name:        "blank name",
			id:          "1",
			requestBody: map[string]interface{}{"name": "  "},
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM `users`").WillReturnRows(userRows(MockUser()))
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Name is required",
		},
		{
			name:        "short password",
			id:          "1",
			requestBody: map[string]interface{}{"password": "short"},
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM `users`").WillReturnRows(userRows(MockUser()))
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Password must be at least 8 characters",
		},
		{
			name:        "unknown user",
			id:          "99",
			requestBody: map[string]interface{}{"name": "Ghost"},
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM `users`").WillReturnRows(sqlmock.NewRows(userColumns))
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "User not found",
		},
		{
			name:           "non-numeric id",
			id:             "me",
			requestBody:    map[string]interface{}{"name": "Ghost"},
			setupMocks:     func(mock sqlmock.Sqlmock) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid user id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mock, cleanup := SetupTestDB(t)
			defer cleanup()
			tt.setupMocks(mock)

			c, w := SetupTestContext()
			SetAdminSession(c, "admin@campuslease.com")
			c.Params = gin.Params{{Key: "id", Value: tt.id}}
			newJSONRequest(c, "PUT", "/api/admin/users/"+tt.id, tt.requestBody)

			AdminUpdateUser(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			response := decodeBody(w)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, response["error"])
			} else {
				assert.Equal(t, float64(1), response["id"])
				assert.NotContains(t, response, "password_hash")
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
