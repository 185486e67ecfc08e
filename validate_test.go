package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatedRejectsOutOfRange(t *testing.T) {
	intPattern, _ := DefaultPattern("int")
	port := Validated(intPattern, "port", "gte=0,lte=65535")

	res := port.Validate("8080")
	require.Equal(t, ResultValid, res.Kind)
	assert.Equal(t, 8080, res.Value)

	res = port.Validate("99999")
	require.Equal(t, ResultInvalid, res.Kind)
	assert.Contains(t, res.Err.Error(), "port")
}
