package dto

import (
	"time"

	"clearTask/internal/models/task"
	"clearTask/internal/models/user"
	"clearTask/internal/notify"
)

// CreateTaskRequest takes dueDate as RFC 3339 or a datetime-local value.
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate,omitempty"`
	Completed   bool    `json:"completed"`
	Pinned      bool    `json:"pinned"`
}

// UpdateTaskRequest is a partial update: absent fields stay untouched.
// An empty description or dueDate clears the field.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	Pinned      *bool   `json:"pinned,omitempty"`
}

type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Pinned      bool       `json:"pinned"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	IsOverdue   bool       `json:"isOverdue"`
}

type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Count int            `json:"count"`
	Stats task.Stats     `json:"stats"`
}

func FromTask(t task.Task, now time.Time) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Pinned:      t.Pinned,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		IsOverdue:   t.Overdue(now),
	}
}

func FromTaskList(tasks []task.Task, now time.Time) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, now)
	}
	return result
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type ProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

type UserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type SessionResponse struct {
	Authenticated bool          `json:"authenticated"`
	Loading       bool          `json:"loading"`
	User          *UserResponse `json:"user,omitempty"`
}

func FromUser(u user.User) *UserResponse {
	return &UserResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

type NotificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
	Last          uint64                `json:"last"`
}
