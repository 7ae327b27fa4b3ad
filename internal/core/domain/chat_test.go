package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(RoleUser, "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, "hello", msg.Content)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestNewMessageRejectsUnknownRole(t *testing.T) {
	_, err := NewMessage(Role("tool"), "nope")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleSystem.Valid())
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("function").Valid())
}

func TestNewConversation(t *testing.T) {
	conv := NewConversation("Groceries", "gpt-4o-mini")
	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, "Groceries", conv.Title)
	assert.Equal(t, "gpt-4o-mini", conv.Model)
	assert.Empty(t, conv.Messages)
	assert.Nil(t, conv.Meta.BudgetUSD)
	assert.Zero(t, conv.Meta.SpentUSD)
}
