package realtime

import (
	"sync"
	"time"

	"filevault/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hub tracks connected users, per-file editing sessions, and
// per-resource collaboration rooms. One presence entry per user: a new
// connection for an already-connected user takes over the bookkeeping,
// while the old socket stays open until it disconnects on its own. All
// state lives behind a single mutex with short critical sections;
// sends happen through non-blocking buffered channels so one stuck
// client cannot stall the hub.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*Client
	editing map[string]EditingSession
	rooms   map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		editing: make(map[string]EditingSession),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

// Register attaches a client and announces the updated presence list.
// A previous connection for the same user is superseded in the map but
// left connected.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	key := client.UserID.Hex()
	h.clients[key] = client
	h.mu.Unlock()

	logrus.Debugf("realtime: user %s connected", key)
	h.broadcastPresence()
}

// Unregister detaches a client, drops it from any rooms it joined,
// releases any editing sessions it held, and announces the updated
// presence list. A client already superseded by a newer connection
// only gets its room memberships cleaned up.
func (h *Hub) Unregister(client *Client) {
	key := client.UserID.Hex()

	h.mu.Lock()
	left := h.leaveAllRoomsLocked(client)

	current, ok := h.clients[key]
	if !ok || current != client {
		h.mu.Unlock()
		client.close()
		h.announceRoomDepartures(client, left)
		return
	}
	delete(h.clients, key)

	var released []EditingSession
	for fileID, session := range h.editing {
		if session.UserID == client.UserID {
			released = append(released, session)
			delete(h.editing, fileID)
		}
	}
	h.mu.Unlock()

	client.close()
	h.announceRoomDepartures(client, left)

	for _, session := range released {
		h.broadcast(newEvent(EventUserStoppedEdit, session))
	}

	logrus.Debugf("realtime: user %s disconnected", key)
	h.broadcastPresence()
}

// StartEditing claims the editing session on a file. If another user
// already holds it, the requester alone is told who has it; a
// successful claim is announced to everyone else.
func (h *Hub) StartEditing(client *Client, fileID string) {
	h.mu.Lock()
	if session, ok := h.editing[fileID]; ok && session.UserID != client.UserID {
		h.mu.Unlock()
		client.trySend(newEvent(EventFileBeingEdited, session))
		return
	}

	session := EditingSession{
		UserID:    client.UserID,
		UserName:  client.Name,
		FileID:    fileID,
		StartedAt: time.Now(),
	}
	h.editing[fileID] = session
	h.mu.Unlock()

	h.broadcastExcept(client, newEvent(EventUserStartedEdit, session))
}

// JoinRoom adds a client to a per-resource collaboration room and
// tells the other room members. Joining twice is a no-op. A room only
// exists while at least one socket is in it.
func (h *Hub) JoinRoom(client *Client, roomID string) {
	h.mu.Lock()
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[roomID] = members
	}
	if _, joined := members[client]; joined {
		h.mu.Unlock()
		return
	}
	members[client] = struct{}{}
	h.mu.Unlock()

	h.broadcastRoom(roomID, client, newEvent(EventUserJoinedRoom, RoomMember{
		UserID:   client.UserID,
		UserName: client.Name,
		RoomID:   roomID,
	}))
}

// LeaveRoom removes a client from a room and tells the remaining
// members. Leaving a room the client is not in is a no-op.
func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mu.Lock()
	members, ok := h.rooms[roomID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, joined := members[client]; !joined {
		h.mu.Unlock()
		return
	}
	delete(members, client)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
	h.mu.Unlock()

	h.broadcastRoom(roomID, client, newEvent(EventUserLeftRoom, RoomMember{
		UserID:   client.UserID,
		UserName: client.Name,
		RoomID:   roomID,
	}))
}

// leaveAllRoomsLocked strips the client from every room it is in and
// returns the room ids it left. Caller holds the mutex.
func (h *Hub) leaveAllRoomsLocked(client *Client) []string {
	var left []string
	for roomID, members := range h.rooms {
		if _, joined := members[client]; !joined {
			continue
		}
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
		left = append(left, roomID)
	}
	return left
}

func (h *Hub) announceRoomDepartures(client *Client, roomIDs []string) {
	for _, roomID := range roomIDs {
		h.broadcastRoom(roomID, client, newEvent(EventUserLeftRoom, RoomMember{
			UserID:   client.UserID,
			UserName: client.Name,
			RoomID:   roomID,
		}))
	}
}

// StopEditing releases an editing session. Only the holder can
// release it; anyone else's stop is ignored.
func (h *Hub) StopEditing(client *Client, fileID string) {
	h.mu.Lock()
	session, ok := h.editing[fileID]
	if !ok || session.UserID != client.UserID {
		h.mu.Unlock()
		return
	}
	delete(h.editing, fileID)
	h.mu.Unlock()

	h.broadcast(newEvent(EventUserStoppedEdit, session))
}

// EditingSessions snapshots the active sessions, for the initial
// state a client needs right after connecting.
func (h *Hub) EditingSessions() []EditingSession {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions := make([]EditingSession, 0, len(h.editing))
	for _, session := range h.editing {
		sessions = append(sessions, session)
	}
	return sessions
}

// OnlineUsers lists the currently connected users.
func (h *Hub) OnlineUsers() []models.UserProfile {
	h.mu.Lock()
	defer h.mu.Unlock()

	users := make([]models.UserProfile, 0, len(h.clients))
	for _, client := range h.clients {
		users = append(users, models.UserProfile{
			ID:    client.UserID,
			Name:  client.Name,
			Email: client.Email,
		})
	}
	return users
}

// NotifyResourceShared tells a user a file or folder was just shared
// with them. Offline users miss the ping; the grant itself lives in
// the database.
func (h *Hub) NotifyResourceShared(targetUserID, resourceID primitive.ObjectID, resourceType, sharedBy string, permission models.Permission) {
	h.sendTo(targetUserID, newEvent(EventResourceShared, map[string]interface{}{
		"resource_id":   resourceID.Hex(),
		"resource_type": resourceType,
		"shared_by":     sharedBy,
		"permission":    permission,
	}))
}

// Notify delivers a generic point-to-point notification under the
// given event type. An empty type falls back to "notification".
func (h *Hub) Notify(targetUserID primitive.ObjectID, eventType, message string, resourceID primitive.ObjectID) {
	if eventType == "" {
		eventType = EventNotification
	}
	h.sendTo(targetUserID, newEvent(eventType, map[string]interface{}{
		"message":     message,
		"resource_id": resourceID.Hex(),
	}))
}

func (h *Hub) broadcastPresence() {
	h.broadcast(newEvent(EventOnlineUsers, h.OnlineUsers()))
}

func (h *Hub) broadcast(data []byte) {
	h.broadcastExcept(nil, data)
}

func (h *Hub) broadcastExcept(skip *Client, data []byte) {
	if data == nil {
		return
	}

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		if client == skip {
			continue
		}
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		client.trySend(data)
	}
}

func (h *Hub) broadcastRoom(roomID string, skip *Client, data []byte) {
	if data == nil {
		return
	}

	h.mu.Lock()
	members := make([]*Client, 0, len(h.rooms[roomID]))
	for member := range h.rooms[roomID] {
		if member == skip {
			continue
		}
		members = append(members, member)
	}
	h.mu.Unlock()

	for _, member := range members {
		member.trySend(data)
	}
}

func (h *Hub) sendTo(userID primitive.ObjectID, data []byte) {
	if data == nil {
		return
	}

	h.mu.Lock()
	client, ok := h.clients[userID.Hex()]
	h.mu.Unlock()

	if !ok {
		return
	}
	client.trySend(data)
}
