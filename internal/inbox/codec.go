package inbox

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"messaging-service/internal/models"
)

// The legacy famjam server dumps MongoDB extended JSON: ids arrive as
// {"$oid": "..."} and timestamps as {"$date": ...} with either an RFC 3339
// string, epoch milliseconds, or a {"$numberLong": "..."} container nested
// inside. The Go service emits plain strings and RFC 3339 times. Both shapes
// are normalized here, at the boundary, so nothing downstream ever sees a
// wrapped value.

type wireID string

func (w *wireID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*w = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*w = wireID(s)
		return nil
	}
	var boxed struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(data, &boxed); err != nil {
		return err
	}
	*w = wireID(boxed.OID)
	return nil
}

type wireTime time.Time

func (w *wireTime) UnmarshalJSON(data []byte) error {
	t, err := parseWireTime(data)
	if err != nil {
		return err
	}
	*w = wireTime(t)
	return nil
}

func parseWireTime(data []byte) (time.Time, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return time.Time{}, nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, s)
	case '{':
		var boxed struct {
			Date json.RawMessage `json:"$date"`
		}
		if err := json.Unmarshal(data, &boxed); err != nil {
			return time.Time{}, err
		}
		if len(boxed.Date) == 0 {
			return time.Time{}, nil
		}
		inner := bytes.TrimSpace(boxed.Date)
		if len(inner) > 0 && inner[0] == '{' {
			var long struct {
				NumberLong string `json:"$numberLong"`
			}
			if err := json.Unmarshal(inner, &long); err != nil {
				return time.Time{}, err
			}
			millis, err := strconv.ParseInt(long.NumberLong, 10, 64)
			if err != nil {
				return time.Time{}, err
			}
			return time.UnixMilli(millis).UTC(), nil
		}
		return parseWireTime(inner)
	default:
		millis, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(millis).UTC(), nil
	}
}

type wireMessage struct {
	ID                wireID   `json:"_id"`
	FamilyID          wireID   `json:"family_id"`
	SenderID          wireID   `json:"sender_id"`
	SenderUsername    string   `json:"sender_username"`
	RecipientID       wireID   `json:"recipient_id"`
	RecipientUsername string   `json:"recipient_username"`
	Content           string   `json:"message_content"`
	SentAt            wireTime `json:"sent_at"`
	IsRead            bool     `json:"is_read"`
}

func (w wireMessage) toModel() models.Message {
	return models.Message{
		ID:                string(w.ID),
		FamilyID:          string(w.FamilyID),
		SenderID:          string(w.SenderID),
		SenderUsername:    w.SenderUsername,
		RecipientID:       string(w.RecipientID),
		RecipientUsername: w.RecipientUsername,
		Content:           w.Content,
		SentAt:            time.Time(w.SentAt),
		IsRead:            w.IsRead,
	}
}

func decodeMessages(r io.Reader) ([]models.Message, error) {
	var wire []wireMessage
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return nil, err
	}
	messages := make([]models.Message, 0, len(wire))
	for _, w := range wire {
		messages = append(messages, w.toModel())
	}
	return messages, nil
}
