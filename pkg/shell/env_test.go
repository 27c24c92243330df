package shell

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplaceEnvVars(t *testing.T) {
	t.Setenv("RKPI2_LEVEL", "19")

	s := ReplaceEnvVars("level: ${RKPI2_LEVEL}, listen: ${RKPI2_LISTEN::1984}, keep: ${RKPI2_MISSING}")
	require.Equal(t, "level: 19, listen: :1984, keep: ${RKPI2_MISSING}", s)
}
