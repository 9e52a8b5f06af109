package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data.yml
var fixtureData []byte

// Fixtures is the sample data set shipped with the binary.
type Fixtures struct {
	Users    []UserFixture    `yaml:"users"`
	Thoughts []ThoughtFixture `yaml:"thoughts"`
	Friends  []FriendFixture  `yaml:"friends"`
}

type UserFixture struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
}

type ThoughtFixture struct {
	ThoughtText string            `yaml:"thoughtText"`
	Username    string            `yaml:"username"`
	Reactions   []ReactionFixture `yaml:"reactions"`
}

type ReactionFixture struct {
	ReactionBody string `yaml:"reactionBody"`
	Username     string `yaml:"username"`
}

// FriendFixture adds Friend to User's friends set.
type FriendFixture struct {
	User   string `yaml:"user"`
	Friend string `yaml:"friend"`
}

// LoadFixtures parses the embedded data set.
func LoadFixtures() (*Fixtures, error) {
	return ParseFixtures(fixtureData)
}

// ParseFixtures parses a YAML fixture document.
func ParseFixtures(raw []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &f, nil
}
