package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/CampusLease/initializers"
	"github.com/CampusLease/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/rs/zerolog/log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type fcmSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type PushNotificationService struct {
	fcmClient fcmSender
	expoURL   string
}

type NotificationPayload struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Sound    string            `json:"sound,omitempty"`
	Priority string            `json:"priority,omitempty"`
}

const expoPushURL = "https://exp.host/--/api/v2/push/send"

var pushService *PushNotificationService

func InitPushNotificationService() {
	ctx := context.Background()

	var opts []option.ClientOption
	if path := initializers.Cfg.FirebaseAccountPath; path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		log.Warn().Err(err).Msg("firebase unavailable, push notifications disabled")
		return
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to get firebase messaging client, push notifications disabled")
		return
	}

	pushService = &PushNotificationService{fcmClient: client, expoURL: expoPushURL}
	log.Info().Bool("serviceAccount", len(opts) > 0).Msg("push notification service initialized with FCM")
}

// GetPushNotificationService returns nil when push is not configured.
func GetPushNotificationService() *PushNotificationService {
	return pushService
}

func SetPushNotificationService(s *PushNotificationService) {
	pushService = s
}

func NewPushNotificationService(sender fcmSender, expoURL string) *PushNotificationService {
	return &PushNotificationService{fcmClient: sender, expoURL: expoURL}
}

func (s *PushNotificationService) SendNotificationToUser(userID int, payload NotificationPayload) error {
	var tokens []models.PushToken
	err := initializers.DB.From("user_push_tokens").
		Where(goqu.C("user_id").Eq(userID)).
		ScanStructs(&tokens)
	if err != nil {
		return fmt.Errorf("failed to get push tokens for user %d: %w", userID, err)
	}

	if len(tokens) == 0 {
		log.Debug().Int("userId", userID).Msg("no push tokens registered")
		return nil
	}

	for _, token := range tokens {
		if err := s.sendToToken(token, payload); err != nil {
			log.Error().Err(err).Int("userId", userID).Str("platform", token.Platform).Msg("push notification failed")
		}
	}
	return nil
}

func (s *PushNotificationService) sendToToken(token models.PushToken, payload NotificationPayload) error {
	if strings.HasPrefix(token.Push_Token, "ExponentPushToken[") {
		return s.sendExpoNotification(token, payload)
	}

	if s.fcmClient == nil {
		return fmt.Errorf("FCM client not initialized")
	}

	message := &messaging.Message{
		Token: token.Push_Token,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
	}

	switch token.Platform {
	case "ios":
		message.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{Title: payload.Title, Body: payload.Body},
					Sound: payload.Sound,
				},
			},
		}
		if payload.Priority == "high" {
			message.APNS.Headers = map[string]string{"apns-priority": "10"}
		}
	case "android":
		message.Android = &messaging.AndroidConfig{
			Priority: "normal",
			Notification: &messaging.AndroidNotification{
				Title: payload.Title,
				Body:  payload.Body,
				Sound: payload.Sound,
			},
		}
		if payload.Priority == "high" {
			message.Android.Priority = "high"
		}
	case "web":
		message.Webpush = &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: payload.Title,
				Body:  payload.Body,
			},
		}
		if link := payload.Data["link"]; link != "" {
			message.Webpush.FCMOptions = &messaging.WebpushFCMOptions{Link: link}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id, err := s.fcmClient.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}

	log.Debug().Str("messageId", id).Str("platform", token.Platform).Msg("FCM notification sent")
	return nil
}

// sendExpoNotification delivers to Expo Go development builds.
func (s *PushNotificationService) sendExpoNotification(token models.PushToken, payload NotificationPayload) error {
	expoMessage := map[string]interface{}{
		"to":    token.Push_Token,
		"title": payload.Title,
		"body":  payload.Body,
		"data":  payload.Data,
	}
	if payload.Sound != "" {
		expoMessage["sound"] = payload.Sound
	}
	if payload.Priority == "high" {
		expoMessage["priority"] = "high"
	}

	jsonBody, err := json.Marshal(expoMessage)
	if err != nil {
		return fmt.Errorf("failed to marshal Expo message: %w", err)
	}

	resp, err := http.Post(s.expoURL, "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to send Expo notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		responseBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("expo push API returned status %d: %s", resp.StatusCode, string(responseBody))
	}
	return nil
}
