package services

import (
	"fmt"

	"github.com/CampusLease/initializers"
	"github.com/CampusLease/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/samber/lo"
)

// ListThreads loads threads newest first with their messages in send order.
// A nil owner lists every thread.
func ListThreads(ownerUserID *int) ([]models.Thread, error) {
	query := initializers.DB.From("threads").Order(goqu.C("updated_at").Desc())
	if ownerUserID != nil {
		query = query.Where(goqu.C("owner_user_id").Eq(*ownerUserID))
	}

	var rows []models.ThreadRow
	if err := query.ScanStructs(&rows); err != nil {
		return nil, fmt.Errorf("loading threads: %w", err)
	}
	if len(rows) == 0 {
		return []models.Thread{}, nil
	}

	ids := lo.Map(rows, func(row models.ThreadRow, _ int) string { return row.ID })
	var messages []models.MessageRow
	if err := initializers.DB.From("messages").
		Where(goqu.C("thread_id").In(ids)).
		Order(goqu.C("created_at").Asc()).
		ScanStructs(&messages); err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}

	grouped := lo.GroupBy(messages, func(m models.MessageRow) string { return m.Thread_ID })
	return lo.Map(rows, func(row models.ThreadRow, _ int) models.Thread {
		return row.ToThread(grouped[row.ID])
	}), nil
}

// GetOwnedThread returns nil without an error when the thread does not exist or
// belongs to another user.
func GetOwnedThread(threadID string, ownerUserID int) (*models.ThreadRow, error) {
	var row models.ThreadRow
	found, err := initializers.DB.From("threads").
		Where(
			goqu.C("id").Eq(threadID),
			goqu.C("owner_user_id").Eq(ownerUserID),
		).
		ScanStruct(&row)
	if err != nil {
		return nil, fmt.Errorf("loading thread %s: %w", threadID, err)
	}
	if !found {
		return nil, nil
	}
	return &row, nil
}

func ThreadMessages(threadID string) ([]models.MessageRow, error) {
	var messages []models.MessageRow
	err := initializers.DB.From("messages").
		Where(goqu.C("thread_id").Eq(threadID)).
		Order(goqu.C("created_at").Asc()).
		ScanStructs(&messages)
	if err != nil {
		return nil, fmt.Errorf("loading messages of %s: %w", threadID, err)
	}
	return messages, nil
}

// MessageRecord builds a messages row. The author owns the thread, so new
// messages are stored already read.
func MessageRecord(id, threadID string, sender, recipient models.Participant, content string, senderUserID int, createdAt string) goqu.Record {
	return goqu.Record{
		"id":              id,
		"thread_id":       threadID,
		"sender":          sender.Name,
		"sender_email":    sender.Email,
		"recipient":       recipient.Name,
		"recipient_email": recipient.Email,
		"content":         content,
		"sender_user_id":  senderUserID,
		"created_at":      createdAt,
		"read":            1,
	}
}
