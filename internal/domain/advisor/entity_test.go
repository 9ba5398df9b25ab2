package advisor

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversation(t *testing.T) {
	userID := uuid.New()

	c, err := NewConversation(userID)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, c.ID())
	assert.Equal(t, userID, c.UserID())
	assert.Equal(t, 0, c.Len())
}

func TestNewConversationRequiresUser(t *testing.T) {
	_, err := NewConversation(uuid.Nil)
	assert.Error(t, err)
}

func TestAppend(t *testing.T) {
	c, err := NewConversation(uuid.New())
	require.NoError(t, err)

	require.NoError(t, c.Append(RoleUser, "How often should I deadlift?"))
	require.NoError(t, c.Append(RoleAssistant, "Twice a week works for most lifters."))

	messages := c.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, RoleUser, messages[0].Role)
	assert.Equal(t, "How often should I deadlift?", messages[0].Content)
	assert.Equal(t, RoleAssistant, messages[1].Role)
}

func TestAppendRejectsBlankContent(t *testing.T) {
	c, err := NewConversation(uuid.New())
	require.NoError(t, err)

	assert.Error(t, c.Append(RoleUser, ""))
	assert.Error(t, c.Append(RoleUser, "   \t\n"))
	assert.Equal(t, 0, c.Len())
}

func TestWindow(t *testing.T) {
	c, err := NewConversation(uuid.New())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, c.Append(RoleUser, fmt.Sprintf("question %d", i)))
	}

	window := c.Window(4)
	require.Len(t, window, 4)
	assert.Equal(t, "question 6", window[0].Content)
	assert.Equal(t, "question 9", window[3].Content)

	assert.Len(t, c.Window(0), 10, "non-positive window returns everything")
	assert.Len(t, c.Window(100), 10, "oversized window returns everything")
	assert.Len(t, c.Messages(), 10, "windowing must not drop history")
}

func TestReconstruct(t *testing.T) {
	id := uuid.New()
	userID := uuid.New()
	messages := []Message{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi"},
	}

	c := Reconstruct(id, userID, messages, messages[0].CreatedAt, messages[1].CreatedAt)

	assert.Equal(t, id, c.ID())
	assert.Equal(t, userID, c.UserID())
	assert.Equal(t, 2, c.Len())
}
