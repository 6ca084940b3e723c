package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role identifies who authored a conversation turn.
type Role string

const (
	RoleUser         Role = "user"
	RoleAssistant    Role = "assistant"
	RoleSystemNotice Role = "system_notice"
)

// ConversationTurn is one message of a conversation owned by the caller.
// The server never stores turns; every chat request carries the full history.
type ConversationTurn struct {
	Role      Role              `json:"role"`
	Content   string            `json:"content"`
	Timestamp *time.Time        `json:"timestamp,omitempty"`
	Sources   []SourceReference `json:"sources,omitempty"`
}

// SourceKind is the media type of a source reference or sermon.
type SourceKind string

const (
	SourceYouTube SourceKind = "youtube"
	SourceAudio   SourceKind = "audio"
)

// SourceReference is a link pulled out of an answer.
type SourceReference struct {
	Title string     `json:"title"`
	URI   string     `json:"uri"`
	Type  SourceKind `json:"type"`
}

// Recommendation holds the sermon title and timestamp when the model
// emitted them in the structured sources block.
type Recommendation struct {
	Title     string `json:"title,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ChatReply is what the chat endpoint returns.
type ChatReply struct {
	Text           string            `json:"text"`
	Sources        []SourceReference `json:"sources"`
	Recommendation *Recommendation   `json:"recommendation,omitempty"`
}

// SermonStatus tracks a sermon through transcription and indexing.
type SermonStatus string

const (
	StatusTranscribing   SermonStatus = "transcribing"
	StatusReadyForReview SermonStatus = "ready"
	StatusIndexed        SermonStatus = "indexed"
	StatusError          SermonStatus = "error"
)

// Valid reports whether s is a known status.
func (s SermonStatus) Valid() bool {
	switch s {
	case StatusTranscribing, StatusReadyForReview, StatusIndexed, StatusError:
		return true
	}
	return false
}

// Sermon is the metadata record of one ingested sermon.
type Sermon struct {
	ID         string       `db:"id" json:"id"`
	Title      string       `db:"title" json:"title"`
	Speaker    string       `db:"speaker" json:"speaker"`
	SourceType SourceKind   `db:"source_type" json:"sourceType"`
	URL        string       `db:"url" json:"url"`
	Date       string       `db:"sermon_date" json:"date"`
	Tags       TagList      `db:"tags" json:"tags"`
	Status     SermonStatus `db:"status" json:"status"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
}

// SermonDraft is the admin form payload used to create a Sermon.
type SermonDraft struct {
	Title      string     `json:"title"`
	Speaker    string     `json:"speaker"`
	SourceType SourceKind `json:"sourceType"`
	URL        string     `json:"url"`
	Date       string     `json:"date"`
	Tags       TagList    `json:"tags"`
}

// TagList is a set of trimmed tags. It decodes from either a JSON array of
// strings or a single comma separated string, and always encodes as an array.
type TagList []string

// ParseTags splits a comma separated string into a normalized TagList.
func ParseTags(s string) TagList {
	return NormalizeTags(strings.Split(s, ","))
}

// NormalizeTags trims each tag, drops empties and duplicates, and keeps order.
func NormalizeTags(in []string) TagList {
	out := make(TagList, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (t *TagList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*t = TagList{}
		return nil
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = ParseTags(s)
		return nil
	case strings.HasPrefix(trimmed, "["):
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("tags: %w", err)
		}
		*t = NormalizeTags(list)
		return nil
	}
	return fmt.Errorf("tags: expected string or array, got %s", trimmed)
}

func (t TagList) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}
