package inbox

// ThreadStats is the per-thread message split between one sender identity and everyone else.
type ThreadStats struct {
	Title string `json:"title"`
	// ParticipantCount wraps above 255.
	ParticipantCount uint8  `json:"participant_count"`
	SentByMe         uint64 `json:"sent_by_me"`
	SentByOthers     uint64 `json:"sent_by_others"`
	FirstMessageMs   uint64 `json:"first_message_ms,omitempty"`
	LastMessageMs    uint64 `json:"last_message_ms,omitempty"`
}

func (s ThreadStats) Total() uint64 {
	return s.SentByMe + s.SentByOthers
}

// Analyse counts the messages in rec sent by me (exact, case-sensitive sender match) versus
// all other senders.
func Analyse(rec ConversationRecord, me string) ThreadStats {
	st := ThreadStats{
		Title:            rec.Title,
		ParticipantCount: uint8(len(rec.Participants)),
	}
	for i, m := range rec.Messages {
		if m.SenderName == me {
			st.SentByMe++
		} else {
			st.SentByOthers++
		}
		if i == 0 || m.TimestampMs < st.FirstMessageMs {
			st.FirstMessageMs = m.TimestampMs
		}
		if m.TimestampMs > st.LastMessageMs {
			st.LastMessageMs = m.TimestampMs
		}
	}
	return st
}
