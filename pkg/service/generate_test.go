package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewLinkID тестирует генерацию идентификаторов ссылок
func TestNewLinkID(t *testing.T) {

	id, err := NewLinkID()
	require.NoError(t, err)

	// ровно 8 символов шестнадцатеричного алфавита в нижнем регистре
	assert.Len(t, id, sizeLinkID)
	assert.Regexp(t, "^[0-9a-f]{8}$", id)
}

// TestNewLinkIDUniqueness проверяет, что идентификаторы не повторяются
func TestNewLinkIDUniqueness(t *testing.T) {

	seen := make(map[string]struct{})

	for i := 0; i < 1000; i++ {
		id, err := NewLinkID()
		require.NoError(t, err)

		_, dup := seen[id]
		require.False(t, dup, "идентификатор %s сгенерирован повторно", id)
		seen[id] = struct{}{}
	}
}
