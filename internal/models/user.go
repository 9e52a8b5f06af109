// Package models contains data structures for the application's domain models.
package models

import (
	"encoding/json"
	"time"
)

// User is an account that owns thoughts and follows other users as friends.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id" bson:"_id"`
	Username  string    `gorm:"uniqueIndex;not null;size:64" json:"username" bson:"username"`
	Email     string    `gorm:"not null" json:"email" bson:"email"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"-" bson:"updatedAt"`

	// Thoughts and Friends are ID sets loaded from the link tables.
	Thoughts []uint `gorm:"-" json:"thoughts" bson:"thoughts"`
	Friends  []uint `gorm:"-" json:"friends" bson:"friends"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// FriendCount returns the size of the friends set.
func (u *User) FriendCount() int {
	return len(u.Friends)
}

// HasFriend reports whether id is in the friends set.
func (u *User) HasFriend(id uint) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}

// MarshalJSON renders createdAt for display and adds the set counts.
func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	thoughts := u.Thoughts
	if thoughts == nil {
		thoughts = []uint{}
	}
	friends := u.Friends
	if friends == nil {
		friends = []uint{}
	}
	return json.Marshal(struct {
		alias
		Thoughts     []uint `json:"thoughts"`
		Friends      []uint `json:"friends"`
		ThoughtCount int    `json:"thoughtCount"`
		FriendCount  int    `json:"friendCount"`
		CreatedAt    string `json:"createdAt"`
	}{
		alias:        alias(u),
		Thoughts:     thoughts,
		Friends:      friends,
		ThoughtCount: len(thoughts),
		FriendCount:  len(friends),
		CreatedAt:    FormatTimestamp(u.CreatedAt),
	})
}

// UserThought is one entry of a user's thoughts set.
type UserThought struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	ThoughtID uint `gorm:"primaryKey;autoIncrement:false;index"`
}

// TableName specifies the table name for GORM
func (UserThought) TableName() string {
	return "user_thoughts"
}

// UserFriend is one directed entry of a user's friends set.
type UserFriend struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	FriendID  uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time
}

// TableName specifies the table name for GORM
func (UserFriend) TableName() string {
	return "user_friends"
}

// ExpandedUser is a user with its thought and friend sets resolved to documents.
type ExpandedUser struct {
	User
	Thoughts []*Thought `json:"thoughts"`
	Friends  []*User    `json:"friends"`
}

// MarshalJSON replaces the ID sets with the resolved documents.
func (e ExpandedUser) MarshalJSON() ([]byte, error) {
	thoughts := e.Thoughts
	if thoughts == nil {
		thoughts = []*Thought{}
	}
	friends := e.Friends
	if friends == nil {
		friends = []*User{}
	}
	return json.Marshal(struct {
		ID           uint       `json:"id"`
		Username     string     `json:"username"`
		Email        string     `json:"email"`
		CreatedAt    string     `json:"createdAt"`
		Thoughts     []*Thought `json:"thoughts"`
		Friends      []*User    `json:"friends"`
		ThoughtCount int        `json:"thoughtCount"`
		FriendCount  int        `json:"friendCount"`
	}{
		ID:           e.ID,
		Username:     e.Username,
		Email:        e.Email,
		CreatedAt:    FormatTimestamp(e.User.CreatedAt),
		Thoughts:     thoughts,
		Friends:      friends,
		ThoughtCount: len(thoughts),
		FriendCount:  len(friends),
	})
}
