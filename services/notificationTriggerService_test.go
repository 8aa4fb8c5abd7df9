package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CampusLease/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firebase.google.com/go/v4/messaging"
)

type fakeFCM struct {
	sent []*messaging.Message
	err  error
}

func (f *fakeFCM) Send(_ context.Context, message *messaging.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, message)
	return "projects/campuslease/messages/1", nil
}

type fakeMailer struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeMailer) Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "email-1"}, nil
}

func usePush(t *testing.T, fcm *fakeFCM) {
	t.Helper()
	original := GetPushNotificationService()
	SetPushNotificationService(NewPushNotificationService(fcm, ""))
	notificationDebounce = &debouncer{last: map[debounceKey]time.Time{}, now: time.Now}
	t.Cleanup(func() { SetPushNotificationService(original) })
}

func useMailer(t *testing.T, mailer *fakeMailer) {
	t.Helper()
	original := GetEmailService()
	SetEmailService(NewEmailService(mailer, "CampusLease <no-reply@campuslease.com>"))
	t.Cleanup(func() { SetEmailService(original) })
}

func newMessage() models.MessageRow {
	sender := 1
	return models.MessageRow{
		ID:              "msg-1",
		Thread_ID:       "thread-1",
		Sender:          "Sam",
		Sender_Email:    "sam@uw.edu",
		Recipient:       "Dana",
		Recipient_Email: "Dana@UW.edu",
		Content:         "Is the studio still available?",
		Sender_User_ID:  &sender,
		Read:            1,
	}
}

func TestNotifyRecipientOfMessage(t *testing.T) {
	mock := setupTestDB(t)
	fcm := &fakeFCM{}
	usePush(t, fcm)

	mock.ExpectQuery("SELECT `id` FROM `users` WHERE .*dana@uw.edu").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectQuery("FROM `user_push_tokens`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "push_token", "platform", "created_at", "updated_at"}).
			AddRow(1, 2, "fcm-token-ios", "ios", "2026-01-01 00:00:00", "2026-01-01 00:00:00").
			AddRow(2, 2, "fcm-token-web", "web", "2026-01-01 00:00:00", "2026-01-01 00:00:00"))

	NotifyRecipientOfMessage(newMessage(), 1)

	require.Len(t, fcm.sent, 2)
	assert.Equal(t, "New message from Sam", fcm.sent[0].Notification.Title)
	assert.Equal(t, "thread-1", fcm.sent[0].Data["threadId"])
	assert.NotNil(t, fcm.sent[0].APNS)
	assert.NotNil(t, fcm.sent[1].Webpush)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifyRecipientOfMessageDebounces(t *testing.T) {
	mock := setupTestDB(t)
	fcm := &fakeFCM{}
	usePush(t, fcm)

	tokenRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "user_id", "push_token", "platform", "created_at", "updated_at"}).
			AddRow(1, 2, "fcm-token", "android", "2026-01-01 00:00:00", "2026-01-01 00:00:00")
	}
	mock.ExpectQuery("FROM `users`").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectQuery("FROM `user_push_tokens`").WillReturnRows(tokenRows())
	mock.ExpectQuery("FROM `users`").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))

	NotifyRecipientOfMessage(newMessage(), 1)
	NotifyRecipientOfMessage(newMessage(), 1)

	assert.Len(t, fcm.sent, 1)
	assert.Equal(t, "high", fcm.sent[0].Android.Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifyRecipientOfMessageSkipsUnknownAndSelf(t *testing.T) {
	mock := setupTestDB(t)
	fcm := &fakeFCM{}
	usePush(t, fcm)

	mock.ExpectQuery("FROM `users`").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("FROM `users`").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	NotifyRecipientOfMessage(newMessage(), 1)
	NotifyRecipientOfMessage(newMessage(), 1)

	assert.Empty(t, fcm.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifyRecipientOfMessageWithoutPush(t *testing.T) {
	mock := setupTestDB(t)
	original := GetPushNotificationService()
	SetPushNotificationService(nil)
	defer SetPushNotificationService(original)

	NotifyRecipientOfMessage(newMessage(), 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebouncerWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := &debouncer{last: map[debounceKey]time.Time{}, now: func() time.Time { return now }}
	key := debounceKey{NotificationNewMessage, 2, "thread-1"}

	assert.True(t, d.allow(key, time.Minute))
	assert.False(t, d.allow(key, time.Minute))
	assert.True(t, d.allow(debounceKey{NotificationNewMessage, 2, "thread-2"}, time.Minute))

	now = now.Add(2 * time.Minute)
	assert.True(t, d.allow(key, time.Minute))

	now = now.Add(48 * time.Hour)
	d.allow(key, time.Minute)
	assert.Len(t, d.last, 1)
}

func TestNotifyOwnerOfApplication(t *testing.T) {
	mock := setupTestDB(t)
	fcm := &fakeFCM{}
	mailer := &fakeMailer{}
	usePush(t, fcm)
	useMailer(t, mailer)

	owner, applicant := 5, 9
	message := "I'd love to tour it"
	listing := models.ListingRow{ID: 3, Title: "Sunny Studio", Owner_Name: "Riley", Owner_Email: "riley@uw.edu", Owner_User_ID: &owner}
	application := models.Application{ID: 11, Listing_ID: 3, Name: "Sam", Email: "sam@uw.edu", Message: &message, Applicant_User_ID: &applicant}

	mock.ExpectQuery("FROM `user_push_tokens`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "push_token", "platform", "created_at", "updated_at"}).
			AddRow(1, owner, "fcm-token", "android", "2026-01-01 00:00:00", "2026-01-01 00:00:00"))

	NotifyOwnerOfApplication(listing, application)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"riley@uw.edu"}, mailer.sent[0].To)
	assert.Equal(t, "New application for Sunny Studio", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].Html, "I&#39;d love to tour it")
	require.Len(t, fcm.sent, 1)
	assert.Equal(t, "11", fcm.sent[0].Data["applicationId"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendPasswordResetEmail(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewEmailService(mailer, "CampusLease <no-reply@campuslease.com>")

	err := svc.SendPasswordResetEmail("sam@uw.edu", "123456", "Sam")

	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "CampusLease <no-reply@campuslease.com>", mailer.sent[0].From)
	assert.Contains(t, mailer.sent[0].Html, "123456")
	assert.Contains(t, mailer.sent[0].Text, "123456")
}

func TestSendEmailErrors(t *testing.T) {
	var missing *EmailService
	assert.Error(t, missing.SendPasswordResetEmail("sam@uw.edu", "123456", "Sam"))

	failing := NewEmailService(&fakeMailer{err: errors.New("rate limited")}, "x@campuslease.com")
	assert.Error(t, failing.SendPasswordResetEmail("sam@uw.edu", "123456", "Sam"))
}
