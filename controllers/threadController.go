package controllers

import (
	"net/http"

	"github.com/CampusLease/initializers"
	"github.com/CampusLease/models"
	"github.com/CampusLease/services"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

func GetThreads(c *gin.Context) {
	user := currentUser(c)
	threads, err := services.ListThreads(&user.ID)
	if err != nil {
		log.Error().Err(err).Int("userId", user.ID).Msg("failed to list threads")
		internalError(c, "Failed to load threads")
		return
	}
	c.JSON(http.StatusOK, threads)
}

// ownedThread answers 404 unless the thread in the id parameter belongs to the caller.
func ownedThread(c *gin.Context, user models.User) (*models.ThreadRow, bool) {
	threadID := c.Param("id")
	thread, err := services.GetOwnedThread(threadID, user.ID)
	if err != nil {
		log.Error().Err(err).Str("threadId", threadID).Msg("failed to load thread")
		internalError(c, "Failed to load thread")
		return nil, false
	}
	if thread == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Thread not found"})
		return nil, false
	}
	return thread, true
}

func GetThread(c *gin.Context) {
	thread, ok := ownedThread(c, currentUser(c))
	if !ok {
		return
	}

	messages, err := services.ThreadMessages(thread.ID)
	if err != nil {
		log.Error().Err(err).Str("threadId", thread.ID).Msg("failed to load thread messages")
		internalError(c, "Failed to load thread")
		return
	}
	c.JSON(http.StatusOK, thread.ToThread(messages))
}

// CreateThread opens a conversation about a listing together with its first message.
func CreateThread(c *gin.Context) {
	user := currentUser(c)

	var body models.ThreadCreate
	if !bindBody(c, &body) {
		return
	}
	body.Normalize()
	if details := body.Validate(user.Name, user.Email); len(details) > 0 {
		invalidPayload(c, details)
		return
	}

	propertyID, hasProperty := body.PropertyNumber()
	if hasProperty {
		listing, err := services.GetListingRow(propertyID)
		if err != nil {
			log.Error().Err(err).Int("listingId", propertyID).Msg("failed to load listing for thread")
			internalError(c, "Failed to create thread")
			return
		}
		if listing == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
	}

	now := initializers.NowTimestamp()
	thread := models.ThreadRow{
		ID:                lo.Ternary(body.ID != "", body.ID, "thread-"+uuid.NewString()),
		Property_Title:    lo.EmptyableToPtr(body.PropertyTitle),
		Participant_Name:  body.ParticipantName,
		Participant_Email: body.ParticipantEmail,
		Owner_User_ID:     &user.ID,
		Created_At:        now,
		Updated_At:        now,
	}
	if hasProperty {
		thread.Property_ID = &propertyID
	}

	sender := models.Participant{Name: user.Name, Email: user.Email}
	recipient := models.Participant{Name: body.ParticipantName, Email: body.ParticipantEmail}
	first := services.MessageRecord("msg-"+uuid.NewString(), thread.ID, sender, recipient, body.Message, user.ID, now)

	err := initializers.DB.WithTx(func(tx *goqu.TxDatabase) error {
		if _, err := tx.Insert("threads").Rows(thread).Executor().Exec(); err != nil {
			return err
		}
		_, err := tx.Insert("messages").Rows(first).Executor().Exec()
		return err
	})
	if err != nil {
		if initializers.IsUniqueViolation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Thread already exists"})
			return
		}
		log.Error().Err(err).Int("userId", user.ID).Msg("failed to create thread")
		internalError(c, "Failed to create thread")
		return
	}

	messages, err := services.ThreadMessages(thread.ID)
	if err != nil {
		log.Error().Err(err).Str("threadId", thread.ID).Msg("failed to reload thread messages")
		internalError(c, "Failed to create thread")
		return
	}

	if len(messages) > 0 {
		go services.NotifyRecipientOfMessage(messages[0], user.ID)
	}
	c.JSON(http.StatusCreated, thread.ToThread(messages))
}

func PostMessage(c *gin.Context) {
	user := currentUser(c)

	var body models.MessageCreate
	if !bindBody(c, &body) {
		return
	}
	body.Normalize()
	if details := body.Validate(); len(details) > 0 {
		invalidPayload(c, details)
		return
	}

	thread, ok := ownedThread(c, user)
	if !ok {
		return
	}

	now := initializers.NowTimestamp()
	sender := models.Participant{Name: user.Name, Email: user.Email}
	recipient := models.Participant{Name: thread.Participant_Name, Email: thread.Participant_Email}
	message := models.MessageRow{
		ID:              "msg-" + uuid.NewString(),
		Thread_ID:       thread.ID,
		Sender:          sender.Name,
		Sender_Email:    sender.Email,
		Recipient:       recipient.Name,
		Recipient_Email: recipient.Email,
		Content:         body.Content,
		Sender_User_ID:  &user.ID,
		Created_At:      now,
		Read:            1,
	}

	err := initializers.DB.WithTx(func(tx *goqu.TxDatabase) error {
		record := services.MessageRecord(message.ID, thread.ID, sender, recipient, message.Content, user.ID, now)
		if _, err := tx.Insert("messages").Rows(record).Executor().Exec(); err != nil {
			return err
		}
		_, err := tx.Update("threads").
			Set(goqu.Record{"updated_at": now}).
			Where(goqu.C("id").Eq(thread.ID)).
			Executor().Exec()
		return err
	})
	if err != nil {
		log.Error().Err(err).Str("threadId", thread.ID).Msg("failed to post message")
		internalError(c, "Failed to send message")
		return
	}

	go services.NotifyRecipientOfMessage(message, user.ID)
	c.JSON(http.StatusCreated, message.ToMessage())
}

func MarkThreadRead(c *gin.Context) {
	thread, ok := ownedThread(c, currentUser(c))
	if !ok {
		return
	}

	_, err := initializers.DB.Update("messages").
		Set(goqu.Record{"read": 1}).
		Where(goqu.C("thread_id").Eq(thread.ID), goqu.C("read").Eq(0)).
		Executor().Exec()
	if err != nil {
		log.Error().Err(err).Str("threadId", thread.ID).Msg("failed to mark thread read")
		internalError(c, "Failed to update thread")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
