package domain

import (
	"encoding/json"
	"fmt"
)

// DecodeCatalog reads a {"quizzes":[...]} document or a bare quiz array.
// Entries that fail to decode, lack a title, or repeat an earlier title are
// skipped; only an unreadable document is an error.
func DecodeCatalog(data []byte) ([]Quiz, error) {
	var doc struct {
		Quizzes []json.RawMessage `json:"quizzes"`
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &doc); err == nil {
		entries = doc.Quizzes
	} else if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return DecodeQuizzes(entries), nil
}

// DecodeQuizzes decodes raw quiz entries, skipping malformed ones.
func DecodeQuizzes(entries []json.RawMessage) []Quiz {
	quizzes := make([]Quiz, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, raw := range entries {
		var quiz Quiz
		if err := json.Unmarshal(raw, &quiz); err != nil || quiz.Title == "" {
			continue
		}
		if _, dup := seen[quiz.Title]; dup {
			continue
		}
		seen[quiz.Title] = struct{}{}
		quizzes = append(quizzes, quiz)
	}
	return quizzes
}
