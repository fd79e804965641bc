// Package hub owns the live connection state: the per-project rooms, the
// inbound message dispatcher, and the heartbeat monitor.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Per-client outbound queue size.
	sendQueueSize = 256

	// heartbeatInterval is the monitor period.
	heartbeatInterval = 30 * time.Second

	// idleTimeout is how long a connection may stay silent before the
	// monitor force-closes it.
	idleTimeout = 60 * time.Second
)

// PresenceTracker is the slice of the presence service the hub drives.
type PresenceTracker interface {
	UpdateCursor(ctx context.Context, userID, projectID, sequenceID string, position float64, activity string) (*domain.Cursor, error)
	DeactivateCursors(ctx context.Context, userID, projectID, sequenceID string) error
}

// OperationSubmitter runs the conflict-resolution pipeline for edits.
type OperationSubmitter interface {
	SubmitOperation(ctx context.Context, projectID string, op *domain.EditOperation) (*domain.EditOperation, *domain.ConflictResolution, error)
}

// CommentPoster creates comments.
type CommentPoster interface {
	AddComment(ctx context.Context, comment *domain.Comment) (*domain.CommentWithAuthor, error)
}

// EventPublisher forwards broadcast events to out-of-process consumers.
type EventPublisher interface {
	PublishEvent(ctx context.Context, projectID string, msg *domain.Message) error
}

// inboundFrame is a raw client frame queued for dispatch.
type inboundFrame struct {
	client *Client
	raw    []byte
}

// Hub maintains the room directory and routes every inbound message to the
// collaboration services. Run processes one unit of work at a time; a
// handler runs to completion, storage calls included, before the next
// frame interleaves.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	inbound    chan inboundFrame

	mu    sync.RWMutex
	rooms map[string]map[string]*Client // projectID -> userID -> client

	tracker   PresenceTracker
	resolver  OperationSubmitter
	comments  CommentPoster
	publisher EventPublisher
	relay     *Relay
}

// NewHub creates a Hub instance.
func NewHub(tracker PresenceTracker, resolver OperationSubmitter, comments CommentPoster, publisher EventPublisher) *Hub {
	if tracker == nil || resolver == nil || comments == nil {
		panic("all services must be non-nil for Hub")
	}
	return &Hub{
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		inbound:    make(chan inboundFrame, 512),
		rooms:      make(map[string]map[string]*Client),
		tracker:    tracker,
		resolver:   resolver,
		comments:   comments,
		publisher:  publisher,
		relay:      NewRelay(),
	}
}

// Relay exposes the in-process event stream for external relays.
func (h *Hub) Relay() *Relay {
	return h.relay
}

// Run is the hub's event loop. It should run in its own goroutine.
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running")

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case frame := <-h.inbound:
			h.dispatch(frame.client, frame.raw)
		}
	}
}

// QueueRegister hands a freshly upgraded client to the hub. Returns false
// when the hub queue is full.
func (h *Hub) QueueRegister(c *Client) bool {
	select {
	case h.register <- c:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"user_id":    c.userID,
			"project_id": c.projectID,
		}).Warn("Hub register queue full, dropping client")
		return false
	}
}

func (h *Hub) queueUnregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-time.After(time.Second):
		logrus.WithFields(logrus.Fields{
			"user_id":    c.userID,
			"project_id": c.projectID,
		}).Warn("Timeout queueing unregister")
	}
}

// registerClient binds the client into its project room. A second
// connection for the same user supersedes the first.
func (h *Hub) registerClient(c *Client) {
	if c == nil {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"user_id":    c.userID,
		"project_id": c.projectID,
	})

	h.mu.Lock()
	room, ok := h.rooms[c.projectID]
	if !ok {
		room = make(map[string]*Client)
		h.rooms[c.projectID] = room
	}
	old := room[c.userID]
	room[c.userID] = c
	h.mu.Unlock()

	if old != nil && old != c {
		// Closing the old socket lets its read pump exit; its unregister
		// then resolves as a no-op because the room already points here.
		old.closeSend()
		old.CloseConn()
		logCtx.Info("Superseded previous connection for user")
	}
	logCtx.Info("Client registered")

	evt, err := domain.NewEvent(domain.MessageUserJoin, c.userID, c.projectID, c.ActiveSequence(),
		domain.PresencePayload{UserID: c.userID, SequenceID: c.ActiveSequence()})
	if err != nil {
		logCtx.WithError(err).Error("Failed to build join event")
		return
	}
	h.Broadcast(c.projectID, evt, c.userID)
	h.emit(c.projectID, evt)
}

// unregisterClient removes the client from its room, deactivates its
// cursors, and broadcasts a single leave event. Calling it again for the
// same client, or for a superseded one, changes nothing.
func (h *Hub) unregisterClient(c *Client) {
	if c == nil {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"user_id":    c.userID,
		"project_id": c.projectID,
	})

	h.mu.Lock()
	room, ok := h.rooms[c.projectID]
	if !ok || room[c.userID] != c {
		h.mu.Unlock()
		return
	}
	delete(room, c.userID)
	if len(room) == 0 {
		delete(h.rooms, c.projectID)
		logCtx.Info("Room empty, removed")
	}
	h.mu.Unlock()

	c.closeSend()
	logCtx.Info("Client unregistered")

	if err := h.tracker.DeactivateCursors(context.Background(), c.userID, c.projectID, ""); err != nil {
		logCtx.WithError(err).Warn("Failed to deactivate cursors on disconnect")
	}

	evt, err := domain.NewEvent(domain.MessageUserLeave, c.userID, c.projectID, c.ActiveSequence(),
		domain.PresencePayload{UserID: c.userID, SequenceID: c.ActiveSequence()})
	if err != nil {
		logCtx.WithError(err).Error("Failed to build leave event")
		return
	}
	h.Broadcast(c.projectID, evt, c.userID)
	h.emit(c.projectID, evt)
}

// Broadcast delivers a message to every member of the project room except
// excludeUser. Sends are fire-and-forget; a full queue is logged and
// skipped.
func (h *Hub) Broadcast(projectID string, msg *domain.Message, excludeUser string) {
	raw, err := json.Marshal(msg)
	if err != nil {
		logrus.WithError(err).WithField("type", msg.Type).Error("Failed to marshal broadcast message")
		return
	}

	h.mu.RLock()
	room := h.rooms[projectID]
	recipients := make([]*Client, 0, len(room))
	for userID, client := range room {
		if userID == excludeUser {
			continue
		}
		recipients = append(recipients, client)
	}
	h.mu.RUnlock()

	for _, client := range recipients {
		client.trySend(raw)
	}
}

// BroadcastToSequence delivers a message to the room members whose active
// sequence matches. Scoping is by project and sequence together.
func (h *Hub) BroadcastToSequence(projectID, sequenceID string, msg *domain.Message, excludeUser string) {
	raw, err := json.Marshal(msg)
	if err != nil {
		logrus.WithError(err).WithField("type", msg.Type).Error("Failed to marshal broadcast message")
		return
	}

	h.mu.RLock()
	room := h.rooms[projectID]
	recipients := make([]*Client, 0, len(room))
	for userID, client := range room {
		if userID == excludeUser || client.ActiveSequence() != sequenceID {
			continue
		}
		recipients = append(recipients, client)
	}
	h.mu.RUnlock()

	for _, client := range recipients {
		client.trySend(raw)
	}
}

// RoomSize returns the number of live connections in a project room.
func (h *Hub) RoomSize(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[projectID])
}

// emit forwards a broadcast event to the in-process relay and the project
// event channel. Failures are logged and swallowed; delivery to connected
// clients never depends on external consumers.
func (h *Hub) emit(projectID string, msg *domain.Message) {
	h.relay.Publish(Event{Kind: eventKind(msg.Type), Message: msg})
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishEvent(context.Background(), projectID, msg); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"project_id": projectID,
			"type":       msg.Type,
		}).Warn("Failed to publish event for external relay")
	}
}

// dispatch validates and routes one inbound frame. Handler errors become
// error envelopes to the originator; nothing here may take down the loop.
func (h *Hub) dispatch(c *Client, raw []byte) {
	c.touch()

	msg, err := domain.ParseMessage(raw)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}

	switch msg.Type {
	case domain.MessageCursorMove:
		h.handleCursorMove(c, msg)
	case domain.MessageEditOperation:
		h.handleEditOperation(c, msg)
	case domain.MessageCommentAdd:
		h.handleCommentAdd(c, msg)
	case domain.MessageHeartbeat:
		c.setAlive(true)
	default:
		h.sendError(c, fmt.Sprintf("unknown message type: %s", msg.Type))
	}
}

func (h *Hub) handleCursorMove(c *Client, msg *domain.Message) {
	var payload domain.CursorMovePayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		h.sendError(c, "malformed cursor_move payload")
		return
	}
	if payload.Position == nil {
		h.sendError(c, "cursor move requires a position")
		return
	}
	sequenceID := payload.SequenceID
	if sequenceID == "" {
		sequenceID = msg.SequenceID
	}
	if sequenceID == "" {
		sequenceID = c.ActiveSequence()
	}
	if sequenceID == "" {
		h.sendError(c, "cursor move requires a sequence_id")
		return
	}
	c.SetActiveSequence(sequenceID)

	cursor, err := h.tracker.UpdateCursor(context.Background(), c.userID, c.projectID, sequenceID, *payload.Position, payload.Activity)
	if err != nil {
		h.sendError(c, "cursor update failed")
		return
	}

	evt, err := domain.NewEvent(domain.MessageCursorMove, c.userID, c.projectID, sequenceID, cursor)
	if err != nil {
		h.sendError(c, "cursor update failed")
		return
	}
	h.BroadcastToSequence(c.projectID, sequenceID, evt, c.userID)
	h.emit(c.projectID, evt)
}

// editResult is the payload of an edit_operation event: the possibly
// adjusted operation plus the resolution that produced it.
type editResult struct {
	Operation  *domain.EditOperation      `json:"operation"`
	Resolution *domain.ConflictResolution `json:"resolution,omitempty"`
}

func (h *Hub) handleEditOperation(c *Client, msg *domain.Message) {
	var payload domain.EditOperationPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		h.sendError(c, "malformed edit_operation payload")
		return
	}

	op := &domain.EditOperation{
		Kind:       domain.OperationKind(payload.Kind),
		TargetKind: domain.TargetKind(payload.TargetKind),
		TargetID:   payload.TargetID,
		Position:   payload.Position,
		Payload:    payload.Payload,
		AuthorID:   c.userID,
	}

	applied, resolution, err := h.resolver.SubmitOperation(context.Background(), c.projectID, op)
	if err != nil {
		// Unapplied: surface the failure to the originator, broadcast
		// nothing.
		h.sendError(c, "edit operation failed")
		return
	}

	evt, err := domain.NewEvent(domain.MessageEditOperation, c.userID, c.projectID, msg.SequenceID,
		editResult{Operation: applied, Resolution: resolution})
	if err != nil {
		h.sendError(c, "edit operation failed")
		return
	}
	if applied.Applied {
		h.Broadcast(c.projectID, evt, c.userID)
		h.emit(c.projectID, evt)
	}
	// The originator always gets a direct confirmation, rejected outcomes
	// included.
	h.sendTo(c, evt)
}

func (h *Hub) handleCommentAdd(c *Client, msg *domain.Message) {
	var payload domain.CommentAddPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		h.sendError(c, "malformed comment_add payload")
		return
	}

	comment := &domain.Comment{
		ProjectID: c.projectID,
		AuthorID:  c.userID,
		Content:   payload.Content,
		Timestamp: payload.Timestamp,
	}
	if payload.ClipID != "" {
		comment.ClipID = &payload.ClipID
	}
	if payload.SequenceID != "" {
		comment.SequenceID = &payload.SequenceID
	}
	if payload.ParentID != "" {
		comment.ParentID = &payload.ParentID
	}

	hydrated, err := h.comments.AddComment(context.Background(), comment)
	if err != nil {
		h.sendError(c, "comment could not be created")
		return
	}

	evt, err := domain.NewEvent(domain.MessageCommentAdd, c.userID, c.projectID, msg.SequenceID, hydrated)
	if err != nil {
		h.sendError(c, "comment could not be created")
		return
	}
	h.Broadcast(c.projectID, evt, c.userID)
	h.emit(c.projectID, evt)
	h.sendTo(c, evt)
}

// sendTo delivers a message to one client, fire-and-forget.
func (h *Hub) sendTo(c *Client, msg *domain.Message) {
	raw, err := json.Marshal(msg)
	if err != nil {
		logrus.WithError(err).WithField("type", msg.Type).Error("Failed to marshal direct message")
		return
	}
	c.trySend(raw)
}

// sendError replies to the originator with an error envelope. The
// connection stays open.
func (h *Hub) sendError(c *Client, reason string) {
	h.sendTo(c, domain.NewErrorMessage(c.userID, c.projectID, reason))
}

// RunHeartbeat drives the keep-alive sweep until stop is closed. It should
// run in its own goroutine.
func (h *Hub) RunHeartbeat(stop <-chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			h.sweepConnections(time.Now())
		}
	}
}

// sweepConnections evicts connections silent beyond the idle timeout and
// pings the rest when their liveness flag is unset.
func (h *Hub) sweepConnections(now time.Time) {
	for _, c := range h.staleClients(now) {
		logrus.WithFields(logrus.Fields{
			"user_id":    c.userID,
			"project_id": c.projectID,
		}).Info("Evicting silent connection")
		c.CloseConn()
		h.queueUnregister(c)
	}

	for _, c := range h.allClients() {
		if now.Sub(c.LastActivity()) > idleTimeout {
			continue
		}
		if c.Alive() {
			c.setAlive(false)
			continue
		}
		if err := c.Ping(); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"user_id":    c.userID,
				"project_id": c.projectID,
			}).Warn("Ping failed, evicting connection")
			c.CloseConn()
			h.queueUnregister(c)
		}
	}
}

// staleClients returns the connections idle beyond the timeout, as of now.
func (h *Hub) staleClients(now time.Time) []*Client {
	var stale []*Client
	for _, c := range h.allClients() {
		if now.Sub(c.LastActivity()) > idleTimeout {
			stale = append(stale, c)
		}
	}
	return stale
}

func (h *Hub) allClients() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var clients []*Client
	for _, room := range h.rooms {
		for _, c := range room {
			clients = append(clients, c)
		}
	}
	return clients
}
