package chat_dto

import "time"

// MessageView is one feed entry with the like state resolved for the viewer.
type MessageView struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	UID       string    `json:"uid"`
	Author    string    `json:"author"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	Text      string    `json:"text"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	LikedByMe bool      `json:"liked_by_me"`
	LikeCount int       `json:"like_count"`
}

type ListMessagesResponse struct {
	RoomID   string        `json:"room_id"`
	Messages []MessageView `json:"messages"`
}

type PostMessageResponse struct {
	MessageID string    `json:"message_id"`
	RoomID    string    `json:"room_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

type ToggleLikeResponse struct {
	MessageID string `json:"message_id"`
	Liked     bool   `json:"liked"`
}
