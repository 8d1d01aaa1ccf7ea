// Package realtime implements push-based query subscriptions over the
// document store: writers publish change events to redis pub/sub, and each
// Feed re-queries its collection on every event, delivering whole snapshots
// to the subscriber. Snapshots within one feed arrive in a consistent order;
// nothing is guaranteed across two independent feeds.
package realtime

const (
	KindInsert = "insert"
	KindUpdate = "update"
	KindDelete = "delete"
)

// Event is the wire form of a change notification. It deliberately carries no
// document payload; subscribers re-query so they always render the store's
// latest view instead of replaying deltas.
type Event struct {
	Collection string `json:"collection"`
	RoomID     string `json:"room_id,omitempty"`
	Kind       string `json:"kind"`
	At         int64  `json:"at"`
}

// DirectoryChannel carries room directory changes.
func DirectoryChannel() string {
	return "changes:rooms"
}

// RoomChannel carries message changes for a single room.
func RoomChannel(roomID string) string {
	return "changes:posts:" + roomID
}
