package models

import (
	"encoding/json"
	"time"
)

// Thought is a short post owned by a user. Its reactions live inside the same record.
type Thought struct {
	ID          uint   `gorm:"primaryKey" json:"id" bson:"_id"`
	ThoughtText string `gorm:"type:varchar(280);not null" json:"thoughtText" bson:"thoughtText"`
	// Username is a display copy of the owner's username.
	Username string `gorm:"not null;index" json:"username" bson:"username"`
	// UserID is the owner, fixed when the thought is created. Nil for orphans.
	UserID    *uint     `gorm:"index;<-:create" json:"userId,omitempty" bson:"userId,omitempty"`
	Reactions Reactions `gorm:"not null" json:"reactions" bson:"reactions"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"-" bson:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Thought) TableName() string {
	return "thoughts"
}

// OwnedBy reports whether userID is the thought's owner.
func (t *Thought) OwnedBy(userID uint) bool {
	return t.UserID != nil && *t.UserID == userID
}

// Validate checks the stored fields of a thought.
func (t *Thought) Validate() error {
	if err := ValidateText("thoughtText", t.ThoughtText); err != nil {
		return err
	}
	return ValidateUsername(t.Username)
}

// AddReaction appends r unless a reaction with the same payload exists.
// It reports whether the sequence changed.
func (t *Thought) AddReaction(r Reaction) bool {
	for _, existing := range t.Reactions {
		if existing.SameAs(r) {
			return false
		}
	}
	t.Reactions = append(t.Reactions, r)
	return true
}

// RemoveReaction drops the reaction with reactionID and reports whether one was removed.
func (t *Thought) RemoveReaction(reactionID string) bool {
	out := make(Reactions, 0, len(t.Reactions))
	removed := false
	for _, r := range t.Reactions {
		if r.ReactionID == reactionID {
			removed = true
			continue
		}
		out = append(out, r)
	}
	if removed {
		t.Reactions = out
	}
	return removed
}

// MarshalJSON renders createdAt for display and adds reactionCount.
func (t Thought) MarshalJSON() ([]byte, error) {
	type alias Thought
	reactions := t.Reactions
	if reactions == nil {
		reactions = Reactions{}
	}
	return json.Marshal(struct {
		alias
		Reactions     Reactions `json:"reactions"`
		ReactionCount int       `json:"reactionCount"`
		CreatedAt     string    `json:"createdAt"`
	}{
		alias:         alias(t),
		Reactions:     reactions,
		ReactionCount: len(reactions),
		CreatedAt:     FormatTimestamp(t.CreatedAt),
	})
}
