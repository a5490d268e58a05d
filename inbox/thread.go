package inbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"
)

// ConversationRecord is one exported message thread file: who took part, every message, and
// the thread metadata the exporter attaches.
type ConversationRecord struct {
	Participants       []ParticipantName `json:"participants" jsonschema:"required"`
	Messages           []MessageRecord   `json:"messages" jsonschema:"required"`
	Title              string            `json:"title" jsonschema:"required"`
	IsStillParticipant bool              `json:"is_still_participant" jsonschema:"required"`
	ThreadType         string            `json:"thread_type" jsonschema:"required"`
	ThreadPath         string            `json:"thread_path" jsonschema:"required"`
}

type ParticipantName struct {
	Name string `json:"name" jsonschema:"required"`
}

// MessageRecord is a single message. Content is nil for non-text messages (photos, stickers, calls).
type MessageRecord struct {
	SenderName  string  `json:"sender_name" jsonschema:"required"`
	TimestampMs uint64  `json:"timestamp_ms" jsonschema:"required"`
	Content     *string `json:"content,omitempty" jsonschema:"oneof_type=string;null"`
}

// The raw* shapes use pointers so a missing or null required field can be told apart from its
// zero value.
type rawThread struct {
	Participants       *[]rawParticipant `json:"participants"`
	Messages           *[]rawMessage     `json:"messages"`
	Title              *string           `json:"title"`
	IsStillParticipant *bool             `json:"is_still_participant"`
	ThreadType         *string           `json:"thread_type"`
	ThreadPath         *string           `json:"thread_path"`
}

type rawParticipant struct {
	Name *string `json:"name"`
}

type rawMessage struct {
	SenderName  *string `json:"sender_name"`
	TimestampMs *uint64 `json:"timestamp_ms"`
	Content     *string `json:"content"`
}

// ReadThreadFile reads and parses one thread file. Errors name the file.
func ReadThreadFile(path string) (ConversationRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ConversationRecord{}, fmt.Errorf("ReadThreadFile: read %s: %w", path, err)
	}
	rec, err := ParseThread(b)
	if err != nil {
		return ConversationRecord{}, fmt.Errorf("ReadThreadFile: parse %s: %w", path, err)
	}
	return rec, nil
}

// ParseThread decodes a thread JSON object. Unknown fields are ignored; missing or null
// required fields are rejected.
func ParseThread(data []byte) (ConversationRecord, error) {
	if !utf8.Valid(data) {
		return ConversationRecord{}, errors.New("input is not valid UTF-8")
	}

	var raw rawThread
	if err := json.Unmarshal(data, &raw); err != nil {
		return ConversationRecord{}, err
	}

	switch {
	case raw.Participants == nil:
		return ConversationRecord{}, missingField("participants")
	case raw.Messages == nil:
		return ConversationRecord{}, missingField("messages")
	case raw.Title == nil:
		return ConversationRecord{}, missingField("title")
	case raw.IsStillParticipant == nil:
		return ConversationRecord{}, missingField("is_still_participant")
	case raw.ThreadType == nil:
		return ConversationRecord{}, missingField("thread_type")
	case raw.ThreadPath == nil:
		return ConversationRecord{}, missingField("thread_path")
	}

	participants := make([]ParticipantName, 0, len(*raw.Participants))
	for i, p := range *raw.Participants {
		if p.Name == nil {
			return ConversationRecord{}, missingField(fmt.Sprintf("participants[%d].name", i))
		}
		participants = append(participants, ParticipantName{Name: *p.Name})
	}

	messages := make([]MessageRecord, 0, len(*raw.Messages))
	for i, m := range *raw.Messages {
		if m.SenderName == nil {
			return ConversationRecord{}, missingField(fmt.Sprintf("messages[%d].sender_name", i))
		}
		if m.TimestampMs == nil {
			return ConversationRecord{}, missingField(fmt.Sprintf("messages[%d].timestamp_ms", i))
		}
		messages = append(messages, MessageRecord{
			SenderName:  *m.SenderName,
			TimestampMs: *m.TimestampMs,
			Content:     m.Content,
		})
	}

	return ConversationRecord{
		Participants:       participants,
		Messages:           messages,
		Title:              *raw.Title,
		IsStillParticipant: *raw.IsStillParticipant,
		ThreadType:         *raw.ThreadType,
		ThreadPath:         *raw.ThreadPath,
	}, nil
}

func missingField(name string) error {
	return fmt.Errorf("missing field %q", name)
}
