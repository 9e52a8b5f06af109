package seed

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/austinzumbro/nosql-social-api/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory produces fake users, thoughts and reactions.
type Factory struct {
	faker *gofakeit.Faker
	seq   int
}

// NewFactory returns a Factory. A zero seed picks a random one.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// User returns a fixture with a username that is unique within this factory.
func (f *Factory) User() UserFixture {
	f.seq++
	name := strings.ToLower(f.faker.Username())
	name = strings.Map(func(r rune) rune {
		if r == ' ' {
			return '_'
		}
		return r
	}, name)
	username := fmt.Sprintf("%s%d", name, f.seq)
	return UserFixture{
		Username: truncate(username, models.MaxUsernameLen),
		Email:    fmt.Sprintf("%s@%s", username, f.faker.DomainName()),
	}
}

// Thought returns a thought fixture authored by username.
func (f *Factory) Thought(username string) ThoughtFixture {
	return ThoughtFixture{
		ThoughtText: truncate(f.faker.Sentence(f.faker.Number(4, 16)), models.MaxTextLen),
		Username:    username,
	}
}

// Reaction returns a reaction fixture from username.
func (f *Factory) Reaction(username string) ReactionFixture {
	return ReactionFixture{
		ReactionBody: truncate(f.faker.Phrase(), models.MaxTextLen),
		Username:     username,
	}
}

// Pick returns a random element of names.
func (f *Factory) Pick(names []string) string {
	return names[f.faker.Number(0, len(names)-1)]
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
