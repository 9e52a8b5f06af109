package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Reaction is a comment embedded in a thought. It has no storage of its own.
type Reaction struct {
	ReactionID   string    `json:"reactionId" bson:"reactionId"`
	ReactionBody string    `json:"reactionBody" bson:"reactionBody"`
	Username     string    `json:"username" bson:"username"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// NewReaction builds a reaction with a fresh reactionId and creation time.
func NewReaction(body, username string) Reaction {
	return Reaction{
		ReactionID:   uuid.NewString(),
		ReactionBody: body,
		Username:     username,
		CreatedAt:    time.Now().UTC(),
	}
}

// Validate checks the reaction payload.
func (r Reaction) Validate() error {
	if err := ValidateText("reactionBody", r.ReactionBody); err != nil {
		return err
	}
	if err := ValidateUsername(r.Username); err != nil {
		return err
	}
	return nil
}

// SameAs reports whether two reactions carry the same payload.
// Generated fields (reactionId, createdAt) are ignored.
func (r Reaction) SameAs(other Reaction) bool {
	return r.ReactionBody == other.ReactionBody && r.Username == other.Username
}

// MarshalJSON renders createdAt for display.
func (r Reaction) MarshalJSON() ([]byte, error) {
	type alias Reaction
	return json.Marshal(struct {
		alias
		CreatedAt string `json:"createdAt"`
	}{
		alias:     alias(r),
		CreatedAt: FormatTimestamp(r.CreatedAt),
	})
}

// Reactions is the ordered reaction sequence stored inside a thought row.
type Reactions []Reaction

// reactionRecord is the column encoding; it keeps full timestamp precision.
type reactionRecord struct {
	ReactionID   string    `json:"reactionId"`
	ReactionBody string    `json:"reactionBody"`
	Username     string    `json:"username"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Value implements driver.Valuer.
func (rs Reactions) Value() (driver.Value, error) {
	records := make([]reactionRecord, len(rs))
	for i, r := range rs {
		records[i] = reactionRecord(r)
	}
	b, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (rs *Reactions) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*rs = Reactions{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported reactions column type %T", src)
	}

	var records []reactionRecord
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &records); err != nil {
			return fmt.Errorf("decode reactions: %w", err)
		}
	}
	out := make(Reactions, len(records))
	for i, rec := range records {
		out[i] = Reaction(rec)
	}
	*rs = out
	return nil
}

// GormDBDataType picks the column type per dialect.
func (Reactions) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "TEXT"
}
