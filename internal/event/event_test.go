package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	t.Parallel()

	t.Run("with payload", func(t *testing.T) {
		t.Parallel()

		payload := struct {
			Files []string `json:"files"`
		}{Files: []string{"result-0.png"}}

		ev, err := NewEvent(42, KindResultReady, payload)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, ev.ID)
		assert.Equal(t, int64(42), ev.TaskID)
		assert.Equal(t, KindResultReady, ev.Kind)
		assert.False(t, ev.CreatedAt.IsZero())

		var decoded struct {
			Files []string `json:"files"`
		}
		require.NoError(t, ev.UnmarshalPayload(&decoded))
		assert.Equal(t, []string{"result-0.png"}, decoded.Files)
	})

	t.Run("without payload", func(t *testing.T) {
		t.Parallel()

		ev, err := NewEvent(1, KindCreated, nil)
		require.NoError(t, err)
		assert.Nil(t, ev.Payload)
	})

	t.Run("unserializable payload", func(t *testing.T) {
		t.Parallel()

		_, err := NewEvent(1, KindCreated, make(chan int))
		assert.Error(t, err)
	})
}
