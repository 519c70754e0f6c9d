package imagecodec

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	random := make([]byte, 4096)
	_, err := rand.Read(random)
	require.NoError(t, err)

	cases := map[string][]byte{
		"empty":  {},
		"zeros":  make([]byte, 17),
		"png":    pngHeader,
		"random": random,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			decoded, err := Decode(Encode(raw))
			require.NoError(t, err)
			assert.Equal(t, raw, decoded)
		})
	}
}

func TestEncode_Deterministic(t *testing.T) {
	raw := []byte("burning building")
	assert.Equal(t, Encode(raw), Encode(raw))
	assert.Equal(t, "YnVybmluZyBidWlsZGluZw==", Encode(raw))
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode("not base64!!")
	assert.Error(t, err)
}

func TestDetectType(t *testing.T) {
	assert.Equal(t, "image/png", DetectType(pngHeader))
	assert.Equal(t, "image/jpeg", DetectType([]byte{0xff, 0xd8, 0xff, 0xe0}))
	assert.Equal(t, DefaultMIME, DetectType([]byte("plain text")))
}

func TestDataURI(t *testing.T) {
	uri := DataURI(pngHeader)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	assert.Equal(t, Encode(pngHeader), strings.TrimPrefix(uri, "data:image/png;base64,"))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".png", Extension("image/png"))
	assert.Equal(t, ".jpg", Extension("application/x-unknown"))
}
