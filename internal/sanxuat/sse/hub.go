// Package sse đẩy sự kiện sản xuất (phân công mới, nộp số liệu, duyệt KCS)
// tới các màn hình đang mở qua Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
)

// Loại sự kiện
const (
	EventAssignmentCreated = "assignment_created"
	EventStageSubmitted    = "stage_submitted"
	EventStageReviewed     = "stage_reviewed"
	EventDrawingFinalized  = "drawing_finalized"
)

// Event một sự kiện SSE
type Event struct {
	EventType string `json:"event"`
	DrawingID string `json:"bangve_id"`
	At        string `json:"at"`
}

// Client một kết nối SSE
type Client struct {
	ID     string
	UserID uint
	Events chan Event
}

// Hub quản lý mọi kết nối SSE
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub tạo Hub mới
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register thêm một client
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("[SSE] Client registered: id=%s user=%d (total: %d)", client.ID, client.UserID, len(h.clients))
}

// Unregister gỡ một client
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		log.Printf("[SSE] Client unregistered: id=%s (total: %d)", clientID, len(h.clients))
	}
}

// Broadcast gửi sự kiện tới mọi client
func (h *Hub) Broadcast(eventType, drawingID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	event := Event{EventType: eventType, DrawingID: drawingID, At: time.Now().Format(time.RFC3339)}
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
			// Client chậm thì bỏ qua, không chặn người khác
		}
	}
}

// NotifyUser gửi sự kiện tới riêng các kết nối của một người dùng
func (h *Hub) NotifyUser(userID uint, eventType, drawingID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	event := Event{EventType: eventType, DrawingID: drawingID, At: time.Now().Format(time.RFC3339)}
	for _, client := range h.clients {
		if client.UserID != userID {
			continue
		}
		select {
		case client.Events <- event:
		default:
		}
	}
}

// Marshal serialize sự kiện cho khung dữ liệu SSE
func (e Event) Marshal() string {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"event":%q}`, e.EventType)
	}
	return string(data)
}
