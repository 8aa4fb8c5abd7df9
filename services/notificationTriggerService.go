package services

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/CampusLease/initializers"
	"github.com/CampusLease/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const (
	NotificationNewMessage     = "NEW_MESSAGE"
	NotificationNewApplication = "NEW_APPLICATION"

	messageDebounceWindow = 2 * time.Minute
	previewLength         = 120
)

type debounceKey struct {
	notifType    string
	targetUserID int
	entityID     string
}

// debouncer suppresses repeat notifications for the same target and entity
// inside a window. Entries older than a day are dropped lazily.
type debouncer struct {
	mu   sync.Mutex
	last map[debounceKey]time.Time
	now  func() time.Time
}

var notificationDebounce = &debouncer{last: map[debounceKey]time.Time{}, now: time.Now}

func (d *debouncer) allow(key debounceKey, window time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for k, at := range d.last {
		if now.Sub(at) > 24*time.Hour {
			delete(d.last, k)
		}
	}

	if at, ok := d.last[key]; ok && now.Sub(at) < window {
		return false
	}
	d.last[key] = now
	return true
}

func userIDByEmail(email string) (int, bool, error) {
	var id int
	found, err := initializers.DB.From("users").
		Select("id").
		Where(goqu.C("email").Eq(strings.ToLower(strings.TrimSpace(email)))).
		ScanVal(&id)
	return id, found, err
}

// NotifyRecipientOfMessage pushes a new inbox message to its recipient when the
// recipient has an account. Bursts in one thread collapse into one push.
func NotifyRecipientOfMessage(message models.MessageRow, senderUserID int) {
	push := GetPushNotificationService()
	if push == nil {
		return
	}

	recipientID, found, err := userIDByEmail(message.Recipient_Email)
	if err != nil {
		log.Error().Err(err).Str("threadId", message.Thread_ID).Msg("failed to look up message recipient")
		return
	}
	if !found || recipientID == senderUserID {
		return
	}

	key := debounceKey{NotificationNewMessage, recipientID, message.Thread_ID}
	if !notificationDebounce.allow(key, messageDebounceWindow) {
		return
	}

	payload := NotificationPayload{
		Title: fmt.Sprintf("New message from %s", message.Sender),
		Body:  lo.Ellipsis(message.Content, previewLength),
		Data: map[string]string{
			"type":     NotificationNewMessage,
			"threadId": message.Thread_ID,
			"link":     "/messages?thread=" + message.Thread_ID,
		},
		Sound:    "default",
		Priority: "high",
	}

	if err := push.SendNotificationToUser(recipientID, payload); err != nil {
		log.Error().Err(err).Int("userId", recipientID).Msg("failed to send message notification")
	}
}

// NotifyOwnerOfApplication emails the listing owner and, when the owner has an
// account, pushes to their devices.
func NotifyOwnerOfApplication(listing models.ListingRow, application models.Application) {
	message := lo.FromPtr(application.Message)

	if email := GetEmailService(); email != nil && listing.Owner_Email != "" {
		if err := email.SendApplicationEmail(listing.Owner_Email, listing.Owner_Name, listing.Title,
			application.Name, application.Email, message); err != nil {
			log.Error().Err(err).Int("listingId", listing.ID).Msg("failed to email listing owner")
		}
	}

	push := GetPushNotificationService()
	if push == nil || listing.Owner_User_ID == nil {
		return
	}
	if application.Applicant_User_ID != nil && *application.Applicant_User_ID == *listing.Owner_User_ID {
		return
	}

	payload := NotificationPayload{
		Title: fmt.Sprintf("New application for %s", listing.Title),
		Body:  fmt.Sprintf("%s applied to your listing", application.Name),
		Data: map[string]string{
			"type":          NotificationNewApplication,
			"listingId":     strconv.Itoa(listing.ID),
			"applicationId": strconv.Itoa(application.ID),
			"link":          "/my-listings",
		},
		Sound: "default",
	}
	if err := push.SendNotificationToUser(*listing.Owner_User_ID, payload); err != nil {
		log.Error().Err(err).Int("userId", *listing.Owner_User_ID).Msg("failed to send application notification")
	}
}
