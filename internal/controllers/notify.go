package controllers

import (
	"time"
)

// NotificationTTL is how long a notification stays visible
const NotificationTTL = 2 * time.Second

// Level is the severity of a notification
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a transient message for the user
type Notification struct {
	ID        uint64    `json:"id"`
	Level     Level     `json:"level"`
	Title     string    `json:"title"`
	Detail    string    `json:"detail,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Notifications holds the active notifications in push order
type Notifications struct {
	items  []Notification
	nextID uint64
	ttl    time.Duration
	now    func() time.Time
}

// NewNotifications creates an empty notification list
func NewNotifications() *Notifications {
	return &Notifications{ttl: NotificationTTL, now: time.Now}
}

// Push adds a notification and returns it
func (n *Notifications) Push(level Level, title, detail string) Notification {
	n.nextID++
	note := Notification{
		ID:        n.nextID,
		Level:     level,
		Title:     title,
		Detail:    detail,
		ExpiresAt: n.now().Add(n.ttl),
	}
	n.items = append(n.items, note)
	return note
}

// Active returns a copy of the notifications still shown
func (n *Notifications) Active() []Notification {
	out := make([]Notification, len(n.items))
	copy(out, n.items)
	return out
}

// Last returns the most recent notification
func (n *Notifications) Last() (Notification, bool) {
	if len(n.items) == 0 {
		return Notification{}, false
	}
	return n.items[len(n.items)-1], true
}

// Dismiss removes one notification
func (n *Notifications) Dismiss(id uint64) bool {
	for i, note := range n.items {
		if note.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return true
		}
	}
	return false
}

// Expire drops notifications whose time has passed and reports whether any were removed
func (n *Notifications) Expire(now time.Time) bool {
	kept := n.items[:0]
	for _, note := range n.items {
		if now.Before(note.ExpiresAt) {
			kept = append(kept, note)
		}
	}
	removed := len(kept) != len(n.items)
	n.items = kept
	return removed
}
