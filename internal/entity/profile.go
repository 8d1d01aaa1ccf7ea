package entity

import "time"

// Profile is the per-user override document in the mongo "profiles"
// collection, keyed by uid. When present its fields take precedence over the
// identity record; the user table caps photo_url length while a profile can
// hold a full data-URI avatar.
type Profile struct {
	UID         string    `bson:"_id" json:"uid"`
	DisplayName string    `bson:"displayName,omitempty" json:"display_name,omitempty"`
	PhotoURL    string    `bson:"photoURL,omitempty" json:"photo_url,omitempty"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updated_at"`
}

// Identity is the resolved view of who a user is: the identity record merged
// with the profile override.
type Identity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
	Email       string `json:"email"`
}
