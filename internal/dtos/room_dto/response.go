package room_dto

import "time"

// RoomSummary is one directory entry with the per-viewer derived flags
// already resolved (classification, bookmark, unread).
type RoomSummary struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	CreatedBy    string     `json:"created_by"`
	OwnerID      string     `json:"owner_id,omitempty"`
	Type         string     `json:"type"`
	Members      []string   `json:"members,omitempty"`
	Bookmarked   bool       `json:"bookmarked"`
	Unread       bool       `json:"unread"`
	LastPostedAt *time.Time `json:"last_posted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ListRoomsResponse carries the directory split into the three tabs.
type ListRoomsResponse struct {
	Public     []RoomSummary `json:"public"`
	Bookmarked []RoomSummary `json:"bookmarked"`
	DM         []RoomSummary `json:"dm"`
}

type CreateRoomResponse struct {
	RoomID    string    `json:"room_id"`
	Title     string    `json:"title"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type ToggleBookmarkResponse struct {
	RoomID     string `json:"room_id"`
	Bookmarked bool   `json:"bookmarked"`
}

type DMRoomResponse struct {
	RoomID  string   `json:"room_id"`
	Members []string `json:"members"`
}

type MarkReadResponse struct {
	RoomID string    `json:"room_id"`
	ReadAt time.Time `json:"read_at"`
}
