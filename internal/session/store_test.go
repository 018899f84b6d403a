package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_Lifecycle(t *testing.T) {
	s := NewStore()
	_, ok := s.Current()
	assert.False(t, ok)
	assert.False(t, s.LoggedIn())

	s.Set("token", 7)
	cur, ok := s.Current()
	assert.True(t, ok)
	assert.Equal(t, Session{Token: "token", UserID: 7}, cur)
	assert.Equal(t, "token", s.Token())

	s.Clear()
	assert.False(t, s.LoggedIn())
	assert.Empty(t, s.Token())
}

func TestStore_PartialSessionIsNotValid(t *testing.T) {
	s := NewStore()
	s.Set("token", 0)
	assert.False(t, s.LoggedIn())
	assert.Equal(t, "token", s.Token())
}
