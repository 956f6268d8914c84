package healthdata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// mustPayload decodes a my-data payload literal.
func mustPayload(t *testing.T, body string) *Payload {
	t.Helper()
	p, err := Decode(strings.NewReader(body))
	require.NoError(t, err)
	return p
}

func f(v float64) *float64 { return &v }
