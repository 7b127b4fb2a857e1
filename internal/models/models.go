package models

import "time"

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type Session struct {
	Token     string    `json:"session_token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Mod is the full listing row, including the aggregated review figures.
type Mod struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Game            string    `json:"game"`
	Category        string    `json:"category"`
	AuthorID        int64     `json:"author_id"`
	AuthorName      string    `json:"author_name"`
	Description     string    `json:"description"`
	Version         string    `json:"version"`
	Requirements    string    `json:"requirements,omitempty"`
	ImageEmoji      string    `json:"image_emoji,omitempty"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Rating          float64   `json:"rating"`
	ReviewCount     int64     `json:"review_count"`
}

// ModRef is the subset returned by create and status-update operations.
type ModRef struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)
