package controllers

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/CampusLease/services"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
)

type fakeMailer struct {
	sent []*resend.SendEmailRequest
}

func (f *fakeMailer) Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "email-1"}, nil
}

func useMailer(t *testing.T) *fakeMailer {
	t.Helper()
	mailer := &fakeMailer{}
	original := services.GetEmailService()
	services.SetEmailService(services.NewEmailService(mailer, "CampusLease <no-reply@campuslease.com>"))
	t.Cleanup(func() { services.SetEmailService(original) })
	return mailer
}

var resetTokenColumns = []string{"id", "user_id", "code", "expires_at", "used", "attempts", "created_at"}

func resetTokenRow(code string, attempts int) *sqlmock.Rows {
	return sqlmock.NewRows(resetTokenColumns).
		AddRow(9, 1, code, "2099-01-01 00:00:00", 0, attempts, fixtureTimestamp)
}

// Test ForgotPassword - Initiate password reset flow by sending 6-digit code
func TestForgotPassword(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		userExists     bool
		insertFails    bool
		emailService   bool
		expectedStatus int
		expectError    bool
	}{
		{
			name:           "successful request - code emailed",
			requestBody:    map[string]interface{}{"email": "test@example.com"},
			userExists:     true,
			emailService:   true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "email service unavailable",
			requestBody:    map[string]interface{}{"email": "test@example.com"},
			userExists:     true,
			expectedStatus: http.StatusInternalServerError,
			expectError:    true,
		},
		{
			name:           "user not found - returns success for security",
			requestBody:    map[string]interface{}{"email": "nonexistent@example.com"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid JSON",
			requestBody:    "{invalid json}",
			expectedStatus: http.StatusBadRequest,
			expectError:    true,
		},
		{
			name:           "missing email",
			requestBody:    map[string]interface{}{"notEmail": "test@example.com"},
			expectedStatus: http.StatusBadRequest,
			expectError:    true,
		},
		{
			name:           "database insert fails",
			requestBody:    map[string]interface{}{"email": "test@example.com"},
			userExists:     true,
			insertFails:    true,
			expectedStatus: http.StatusInternalServerError,
			expectError:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mock, cleanup := SetupTestDB(t)
			defer cleanup()

			var mailer *fakeMailer
			if tt.emailService {
				mailer = useMailer(t)
			}

			if _, isString := tt.requestBody.(string); !isString && tt.requestBody.(map[string]interface{})["email"] != nil {
				if tt.userExists {
					mock.ExpectQuery("SELECT .* FROM `users`").WillReturnRows(userRows(MockUser()))
					insert := mock.ExpectExec("INSERT INTO `password_reset_tokens` .*'[0-9]{6}'")
					if tt.insertFails {
						insert.WillReturnError(sqlmock.ErrCancelled)
					} else {
						insert.WillReturnResult(sqlmock.NewResult(1, 1))
					}
				} else {
					mock.ExpectQuery("SELECT .* FROM `users`").WillReturnRows(sqlmock.NewRows(userColumns))
				}
			}

			c, w := SetupTestContext()
			newJSONRequest(c, "POST", "/api/auth/forgot-password", tt.requestBody)

			ForgotPassword(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			response := decodeBody(w)
			if tt.expectError {
				assert.NotNil(t, response["error"])
			} else {
				assert.NotNil(t, response["message"])
			}

			if mailer != nil {
				if assert.Len(t, mailer.sent, 1) {
					assert.Equal(t, []string{"test@example.com"}, mailer.sent[0].To)
					assert.Regexp(t, regexp.MustCompile(`[0-9]{6}`), mailer.sent[0].Text)
				}
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestResetPassword(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMocks     func(mock sqlmock.Sqlmock)
		expectedStatus int
		expectedError  string
	}{
		{
			name:        "successful reset",
			requestBody: map[string]interface{}{"email": "test@example.com", "code": "123456", "newPassword": "newpassword1"},
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT .* FROM `users`").WillReturnRows(userRows(MockUser()))
				mock.ExpectQuery("SELECT .* FROM `password_reset_tokens` WHERE .*`used` = 0.*`expires_at` >").
					WillReturnRows(resetTokenRow("123456", 0))
				mock.ExpectBegin()
				mock.ExpectExec("UPDATE `users` SET `password_hash`").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("UPDATE `password_reset_tokens` SET `used`=1").WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectCommit()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "wrong code uses an attempt",
			requestBody: map[string]interface{}{"email": "test@example.com", "code": "654321", "newPassword": "newpassword1"},
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT .* FROM `users`").WillReturnRows(userRows(MockUser()))
				mock.ExpectQuery("SELECT .* FROM `password_reset_tokens`").WillReturnRows(resetTokenRow("123456", 1))
				mock.ExpectExec("UPDATE `password_reset_tokens` SET `attempts`=2").WillReturnResult(sqlmock.NewResult(0, 1))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid or expired verification code",
		},
		{
			name:        "attempts exhausted",
			requestBody: map[string]interface{}{"email": "test@example.com", "code": "123456", "newPassword": "newpassword1"},
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT .* FROM `users`").WillReturnRows(userRows(MockUser()))
				mock.ExpectQuery("SELECT .* FROM `password_reset_tokens`").WillReturnRows(resetTokenRow("123456", 3))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Maximum verification attempts exceeded. Please request a new code.",
		},
		{
			name:        "no live code",
			requestBody: map[string]interface{}{"email": "test@example.com", "code": "123456", "newPassword": "newpassword1"},
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT .* FROM `users`").WillReturnRows(userRows(MockUser()))
				mock.ExpectQuery("SELECT .* FROM `password_reset_tokens`").WillReturnRows(sqlmock.NewRows(resetTokenColumns))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid or expired verification code",
		},
		{
			name:        "unknown email",
			requestBody: map[string]interface{}{"email": "nobody@example.com", "code": "123456", "newPassword": "newpassword1"},
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT .* FROM `users`").WillReturnRows(sqlmock.NewRows(userColumns))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid email or verification code",
		},
		{
			name:           "short new password",
			requestBody:    map[string]interface{}{"email": "test@example.com", "code": "123456", "newPassword": "short"},
			setupMocks:     func(mock sqlmock.Sqlmock) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "code must have six digits",
			requestBody:    map[string]interface{}{"email": "test@example.com", "code": "12345", "newPassword": "newpassword1"},
			setupMocks:     func(mock sqlmock.Sqlmock) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mock, cleanup := SetupTestDB(t)
			defer cleanup()
			tt.setupMocks(mock)

			c, w := SetupTestContext()
			newJSONRequest(c, "POST", "/api/auth/reset-password", tt.requestBody)

			ResetPassword(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			response := decodeBody(w)
			if tt.expectedStatus == http.StatusOK {
				assert.NotNil(t, response["message"])
			} else {
				assert.NotNil(t, response["error"])
			}
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, response["error"])
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestVerifyResetCode(t *testing.T) {
	_, mock, cleanup := SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").WillReturnRows(userRows(MockUser()))
	mock.ExpectQuery("SELECT .* FROM `password_reset_tokens`").WillReturnRows(resetTokenRow("123456", 0))

	c, w := SetupTestContext()
	newJSONRequest(c, "POST", "/api/auth/verify-reset-code", map[string]interface{}{
		"email": "test@example.com",
		"code":  "123456",
	})

	VerifyResetCode(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Verification code is valid", decodeBody(w)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
