package realtime

import (
	"encoding/json"
	"testing"

	"filevault/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestClient(hub *Hub, name string) *Client {
	return NewClient(hub, nil, primitive.NewObjectID(), name, name+"@example.com")
}

// drain empties the client's buffer and returns the decoded events.
func drain(t *testing.T, c *Client) []Event {
	t.Helper()
	var events []Event
	for {
		select {
		case data := <-c.send:
			var event Event
			require.NoError(t, json.Unmarshal(data, &event))
			events = append(events, event)
		default:
			return events
		}
	}
}

func lastEventOfType(events []Event, eventType string) (Event, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == eventType {
			return events[i], true
		}
	}
	return Event{}, false
}

func TestRegisterBroadcastsPresence(t *testing.T) {
	hub := NewHub()
	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")

	hub.Register(alice)
	hub.Register(bob)

	events := drain(t, alice)
	event, ok := lastEventOfType(events, EventOnlineUsers)
	require.True(t, ok, "alice should see a presence update for bob's arrival")

	var users []models.UserProfile
	raw, err := json.Marshal(event.Payload)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &users))
	assert.Len(t, users, 2)
}

func TestSecondConnectionReplacesFirst(t *testing.T) {
	hub := NewHub()
	first := newTestClient(hub, "alice")
	second := NewClient(hub, nil, first.UserID, first.Name, first.Email)

	hub.Register(first)
	hub.Register(second)

	assert.Len(t, hub.OnlineUsers(), 1)

	// Unregistering the superseded connection must not kick the new one.
	hub.Unregister(first)
	assert.Len(t, hub.OnlineUsers(), 1)

	hub.Unregister(second)
	assert.Empty(t, hub.OnlineUsers())
}

func TestSupersededConnectionStaysOpen(t *testing.T) {
	hub := NewHub()
	first := newTestClient(hub, "alice")
	second := NewClient(hub, nil, first.UserID, first.Name, first.Email)

	hub.Register(first)
	hub.Register(second)

	// The newer socket takes over the presence entry; the older one
	// keeps its connection until it disconnects on its own.
	select {
	case <-first.done:
		t.Fatal("superseded connection must not be closed by the hub")
	default:
	}
}

func TestStartEditingDeniedWhileHeld(t *testing.T) {
	hub := NewHub()
	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	hub.Register(alice)
	hub.Register(bob)

	fileID := primitive.NewObjectID().Hex()
	hub.StartEditing(alice, fileID)
	drain(t, bob)

	hub.StartEditing(bob, fileID)

	events := drain(t, bob)
	event, ok := lastEventOfType(events, EventFileBeingEdited)
	require.True(t, ok, "bob should be told the file is already being edited")

	var session EditingSession
	raw, err := json.Marshal(event.Payload)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &session))
	assert.Equal(t, alice.UserID, session.UserID)
	assert.Equal(t, "alice", session.UserName)

	// The denial is point to point, not broadcast.
	aliceEvents := drain(t, alice)
	_, ok = lastEventOfType(aliceEvents, EventFileBeingEdited)
	assert.False(t, ok)
}

func TestStartEditingNotEchoedToClaimant(t *testing.T) {
	hub := NewHub()
	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	hub.Register(alice)
	hub.Register(bob)
	drain(t, alice)
	drain(t, bob)

	hub.StartEditing(alice, primitive.NewObjectID().Hex())

	events := drain(t, bob)
	_, ok := lastEventOfType(events, EventUserStartedEdit)
	require.True(t, ok, "bob should learn alice started editing")

	aliceEvents := drain(t, alice)
	_, ok = lastEventOfType(aliceEvents, EventUserStartedEdit)
	assert.False(t, ok, "the claimant already knows")
}

func TestStartEditingIdempotentForHolder(t *testing.T) {
	hub := NewHub()
	alice := newTestClient(hub, "alice")
	hub.Register(alice)

	fileID := primitive.NewObjectID().Hex()
	hub.StartEditing(alice, fileID)
	hub.StartEditing(alice, fileID)

	assert.Len(t, hub.EditingSessions(), 1)
}

func TestStopEditingOnlyByHolder(t *testing.T) {
	hub := NewHub()
	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	hub.Register(alice)
	hub.Register(bob)

	fileID := primitive.NewObjectID().Hex()
	hub.StartEditing(alice, fileID)

	hub.StopEditing(bob, fileID)
	assert.Len(t, hub.EditingSessions(), 1, "a non-holder cannot release the session")

	hub.StopEditing(alice, fileID)
	assert.Empty(t, hub.EditingSessions())
}

func TestDisconnectReleasesEditingSessions(t *testing.T) {
	hub := NewHub()
	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	hub.Register(alice)
	hub.Register(bob)

	fileID := primitive.NewObjectID().Hex()
	hub.StartEditing(alice, fileID)
	drain(t, bob)

	hub.Unregister(alice)

	assert.Empty(t, hub.EditingSessions())

	events := drain(t, bob)
	stopped, ok := lastEventOfType(events, EventUserStoppedEdit)
	require.True(t, ok, "bob should learn the session was released")

	var session EditingSession
	raw, err := json.Marshal(stopped.Payload)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &session))
	assert.Equal(t, fileID, session.FileID)

	presence, ok := lastEventOfType(events, EventOnlineUsers)
	require.True(t, ok)
	var users []models.UserProfile
	raw, err = json.Marshal(presence.Payload)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &users))
	assert.Len(t, users, 1)
}

func TestJoinRoomAnnouncesToMembersOnly(t *testing.T) {
	hub := NewHub()
	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	carol := newTestClient(hub, "carol")
	hub.Register(alice)
	hub.Register(bob)
	hub.Register(carol)

	roomID := "folder:" + primitive.NewObjectID().Hex()
	hub.JoinRoom(alice, roomID)
	drain(t, alice)
	drain(t, bob)
	drain(t, carol)

	hub.JoinRoom(bob, roomID)

	events := drain(t, alice)
	event, ok := lastEventOfType(events, EventUserJoinedRoom)
	require.True(t, ok, "alice shares the room, so she hears bob join")

	var member RoomMember
	raw, err := json.Marshal(event.Payload)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &member))
	assert.Equal(t, bob.UserID, member.UserID)
	assert.Equal(t, "bob", member.UserName)
	assert.Equal(t, roomID, member.RoomID)

	// Connected but outside the room: silence.
	carolEvents := drain(t, carol)
	_, ok = lastEventOfType(carolEvents, EventUserJoinedRoom)
	assert.False(t, ok)

	// No echo back to the joiner.
	bobEvents := drain(t, bob)
	_, ok = lastEventOfType(bobEvents, EventUserJoinedRoom)
	assert.False(t, ok)
}

func TestLeaveRoomAnnouncesToRemaining(t *testing.T) {
	hub := NewHub()
	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	hub.Register(alice)
	hub.Register(bob)

	roomID := "file:" + primitive.NewObjectID().Hex()
	hub.JoinRoom(alice, roomID)
	hub.JoinRoom(bob, roomID)
	drain(t, alice)
	drain(t, bob)

	hub.LeaveRoom(bob, roomID)

	events := drain(t, alice)
	event, ok := lastEventOfType(events, EventUserLeftRoom)
	require.True(t, ok)

	var member RoomMember
	raw, err := json.Marshal(event.Payload)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &member))
	assert.Equal(t, bob.UserID, member.UserID)

	// Leaving a room you are not in changes nothing.
	hub.LeaveRoom(bob, roomID)
	assert.Empty(t, drain(t, alice))
}

func TestRoomDissolvesWhenEmpty(t *testing.T) {
	hub := NewHub()
	alice := newTestClient(hub, "alice")
	hub.Register(alice)

	roomID := "file:" + primitive.NewObjectID().Hex()
	hub.JoinRoom(alice, roomID)

	hub.mu.Lock()
	_, exists := hub.rooms[roomID]
	hub.mu.Unlock()
	require.True(t, exists)

	hub.LeaveRoom(alice, roomID)

	hub.mu.Lock()
	_, exists = hub.rooms[roomID]
	hub.mu.Unlock()
	assert.False(t, exists, "membership lives only as long as sockets are joined")
}

func TestDisconnectLeavesRooms(t *testing.T) {
	hub := NewHub()
	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	hub.Register(alice)
	hub.Register(bob)

	roomID := "folder:" + primitive.NewObjectID().Hex()
	hub.JoinRoom(alice, roomID)
	hub.JoinRoom(bob, roomID)
	drain(t, bob)

	hub.Unregister(alice)

	events := drain(t, bob)
	_, ok := lastEventOfType(events, EventUserLeftRoom)
	assert.True(t, ok, "bob should hear alice dropped out of the room")
}

func TestNotifyResourceSharedOfflineUserDropped(t *testing.T) {
	hub := NewHub()
	offline := primitive.NewObjectID()

	// Must not panic or block when the target is not connected.
	hub.NotifyResourceShared(offline, primitive.NewObjectID(), "file", "alice", models.PermissionView)
}

func TestNotifyResourceSharedDelivered(t *testing.T) {
	hub := NewHub()
	bob := newTestClient(hub, "bob")
	hub.Register(bob)
	drain(t, bob)

	resourceID := primitive.NewObjectID()
	hub.NotifyResourceShared(bob.UserID, resourceID, "folder", "alice", models.PermissionEdit)

	events := drain(t, bob)
	event, ok := lastEventOfType(events, EventResourceShared)
	require.True(t, ok)

	payload, ok := event.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, resourceID.Hex(), payload["resource_id"])
	assert.Equal(t, "folder", payload["resource_type"])
	assert.Equal(t, "alice", payload["shared_by"])
	assert.Equal(t, "edit", payload["permission"])
}

func TestNotifyCarriesEventType(t *testing.T) {
	hub := NewHub()
	bob := newTestClient(hub, "bob")
	hub.Register(bob)
	drain(t, bob)

	resourceID := primitive.NewObjectID()
	hub.Notify(bob.UserID, "access-revoked", "Your access to a file was removed", resourceID)

	events := drain(t, bob)
	event, ok := lastEventOfType(events, "access-revoked")
	require.True(t, ok)

	payload, ok := event.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, resourceID.Hex(), payload["resource_id"])
	assert.Equal(t, "Your access to a file was removed", payload["message"])
}

func TestNotifyDefaultsToNotificationType(t *testing.T) {
	hub := NewHub()
	bob := newTestClient(hub, "bob")
	hub.Register(bob)
	drain(t, bob)

	hub.Notify(bob.UserID, "", "hello", primitive.NewObjectID())

	events := drain(t, bob)
	_, ok := lastEventOfType(events, EventNotification)
	assert.True(t, ok)
}
