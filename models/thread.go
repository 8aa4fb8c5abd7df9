package models

import (
	"strconv"
	"strings"
)

type Participant struct {
	Name  string
	Email string
}

type ThreadRow struct {
	ID                string
	Property_ID       *int
	Property_Title    *string
	Participant_Name  string
	Participant_Email string
	Owner_User_ID     *int
	Created_At        string
	Updated_At        string
}

type MessageRow struct {
	ID              string
	Thread_ID       string
	Sender          string
	Sender_Email    string
	Recipient       string
	Recipient_Email string
	Content         string
	Sender_User_ID  *int
	Created_At      string
	Read            int
}

type Message struct {
	ID             string `json:"id"`
	ThreadID       string `json:"threadId"`
	Sender         string `json:"sender"`
	SenderEmail    string `json:"senderEmail"`
	Recipient      string `json:"recipient"`
	RecipientEmail string `json:"recipientEmail"`
	Content        string `json:"content"`
	CreatedAt      string `json:"createdAt"`
	Read           bool   `json:"read"`
}

type Thread struct {
	ID               string    `json:"id"`
	PropertyID       string    `json:"propertyId,omitempty"`
	PropertyTitle    string    `json:"propertyTitle,omitempty"`
	ParticipantName  string    `json:"participantName"`
	ParticipantEmail string    `json:"participantEmail"`
	Messages         []Message `json:"messages"`
}

func (row MessageRow) ToMessage() Message {
	return Message{
		ID:             row.ID,
		ThreadID:       row.Thread_ID,
		Sender:         row.Sender,
		SenderEmail:    row.Sender_Email,
		Recipient:      row.Recipient,
		RecipientEmail: row.Recipient_Email,
		Content:        row.Content,
		CreatedAt:      row.Created_At,
		Read:           row.Read != 0,
	}
}

func (row ThreadRow) ToThread(messages []MessageRow) Thread {
	thread := Thread{
		ID:               row.ID,
		ParticipantName:  row.Participant_Name,
		ParticipantEmail: row.Participant_Email,
		Messages:         make([]Message, 0, len(messages)),
	}
	if row.Property_ID != nil && *row.Property_ID != 0 {
		thread.PropertyID = strconv.Itoa(*row.Property_ID)
	}
	if row.Property_Title != nil {
		thread.PropertyTitle = *row.Property_Title
	}
	for _, m := range messages {
		thread.Messages = append(thread.Messages, m.ToMessage())
	}
	return thread
}

type ThreadCreate struct {
	ID               string `json:"id"`
	PropertyID       FlexID `json:"propertyId"`
	PropertyTitle    string `json:"propertyTitle"`
	ParticipantName  string `json:"participantName"`
	ParticipantEmail string `json:"participantEmail"`
	Message          string `json:"message"`
}

func (t *ThreadCreate) Normalize() {
	t.ID = strings.TrimSpace(t.ID)
	t.PropertyTitle = strings.TrimSpace(t.PropertyTitle)
	t.ParticipantName = strings.TrimSpace(t.ParticipantName)
	t.ParticipantEmail = strings.TrimSpace(t.ParticipantEmail)
	t.Message = strings.TrimSpace(t.Message)
}

// PropertyNumber returns the referenced listing id, or false when none was given.
func (t ThreadCreate) PropertyNumber() (int, bool) {
	if t.PropertyID == "" {
		return 0, false
	}
	id, err := strconv.Atoi(string(t.PropertyID))
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// Validate checks the body once the sender has been taken from the session.
func (t ThreadCreate) Validate(senderName, senderEmail string) []string {
	var details []string
	if t.PropertyID != "" {
		if _, err := strconv.Atoi(string(t.PropertyID)); err != nil {
			details = append(details, "propertyId must be a valid listing id")
		}
	}
	if t.ParticipantName == "" {
		details = append(details, "participantName is required")
	}
	if !strings.Contains(t.ParticipantEmail, "@") {
		details = append(details, "participantEmail is invalid")
	}
	if senderName == "" {
		details = append(details, "senderName is required")
	}
	if !strings.Contains(senderEmail, "@") {
		details = append(details, "senderEmail is invalid")
	}
	if t.Message == "" {
		details = append(details, "message is required")
	}
	return details
}

type MessageCreate struct {
	Content string `json:"content"`
}

func (m *MessageCreate) Normalize() {
	m.Content = strings.TrimSpace(m.Content)
}

func (m MessageCreate) Validate() []string {
	if m.Content == "" {
		return []string{"content is required"}
	}
	return nil
}
