package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	got, err := Normalize("8 (912) 345-67-89", "RU")
	require.NoError(t, err)
	assert.Equal(t, "+79123456789", got)

	got, err = Normalize("+7 912 345 67 89", "US")
	require.NoError(t, err)
	assert.Equal(t, "+79123456789", got)

	_, err = Normalize("", "RU")
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = Normalize("12", "RU")
	assert.ErrorIs(t, err, ErrInvalidPhone)
}
