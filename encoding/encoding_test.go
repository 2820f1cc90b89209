package encoding_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lestrrat-go/neon/encoding"
)

func TestLoad(t *testing.T) {
	for _, name := range []string{"UTF-8", "utf8", "euc-jp", "Shift_JIS", "ISO-8859-1", "windows-1252"} {
		require.NotNil(t, encoding.Load(name), "%s is recognized", name)
	}
	require.Nil(t, encoding.Load("no-such-encoding"))
	require.False(t, encoding.Recognized("no-such-encoding"))
	require.True(t, encoding.Recognized("utf-16"))
}

func TestDecode(t *testing.T) {
	// "café" in ISO-8859-1
	got, err := encoding.Decode("iso-8859-1", []byte{0x63, 0x61, 0x66, 0xe9})
	require.NoError(t, err)
	require.Equal(t, "café", string(got))

	_, err = encoding.Decode("no-such-encoding", []byte("x"))
	require.Error(t, err)
}
