package models

import (
	"time"
)

type Status int

const (
	StatusActive     Status = 1
	StatusOnHold     Status = 2
	StatusInProgress Status = 3
	StatusCompleted  Status = 4
)

func (s Status) Label() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusOnHold:
		return "On Hold"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return ""
	}
}

// BadgeClass maps a status to the CSS class of its color-coded badge.
func (s Status) BadgeClass() string {
	switch s {
	case StatusActive:
		return "badge badge-active"
	case StatusOnHold:
		return "badge badge-on-hold"
	case StatusInProgress:
		return "badge badge-in-progress"
	default:
		return "badge badge-completed"
	}
}

func (s Status) Valid() bool {
	return s >= StatusActive && s <= StatusCompleted
}

func Statuses() []Status {
	return []Status{StatusActive, StatusOnHold, StatusInProgress, StatusCompleted}
}

// Project mirrors the wire shape of the remote API. The server assigns
// _id and createdAt; deadline and user are nullable.
type Project struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Budget      string     `json:"budget"`
	CreatedAt   time.Time  `json:"createdAt"`
	User        *User      `json:"user"`
}

func (p Project) OwnerEmail() string {
	if p.User == nil {
		return ""
	}
	return p.User.Email
}

// SavePayload is what the modal hands back on submit. Deadline is omitted
// from the request body entirely when absent, never sent as null.
type SavePayload struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Budget      string     `json:"budget"`
	User        *User      `json:"user"`
}
