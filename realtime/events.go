package realtime

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event types pushed to connected clients. Names are part of the wire
// contract with the frontend.
const (
	EventResourceShared  = "resource-shared-with-you"
	EventUserStartedEdit = "user-started-editing"
	EventUserStoppedEdit = "user-stopped-editing"
	EventFileBeingEdited = "file-being-edited"
	EventOnlineUsers     = "onlineUsersUpdated"
	EventNotification    = "notification"
	EventUserJoinedRoom  = "user-joined-room"
	EventUserLeftRoom    = "user-left-room"
)

// Event is the envelope every outbound message uses.
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func newEvent(eventType string, payload interface{}) []byte {
	data, err := json.Marshal(Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		return nil
	}
	return data
}

// Inbound client messages.
const (
	ActionStartEditing = "start-editing"
	ActionStopEditing  = "stop-editing"
	ActionJoinRoom     = "join-room"
	ActionLeaveRoom    = "leave-room"
)

type inboundMessage struct {
	Action string `json:"action"`
	FileID string `json:"file_id"`
	RoomID string `json:"room_id"`
}

// RoomMember identifies a user inside a collaboration room event.
type RoomMember struct {
	UserID   primitive.ObjectID `json:"user_id"`
	UserName string             `json:"user_name"`
	RoomID   string             `json:"room_id"`
}

// EditingSession records who holds the editing lock on a file.
type EditingSession struct {
	UserID    primitive.ObjectID `json:"user_id"`
	UserName  string             `json:"user_name"`
	FileID    string             `json:"file_id"`
	StartedAt time.Time          `json:"started_at"`
}
