package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDataURL(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,AQID", EncodeDataURL("image/png", []byte{1, 2, 3}))
	assert.Equal(t, "data:application/octet-stream;base64,", EncodeDataURL("", nil))
}

func TestDecodeDataURL(t *testing.T) {
	mime, data, err := DecodeDataURL("data:image/png;base64,AQID")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, []byte{1, 2, 3}, data)

	mime, data, err = DecodeDataURL("data:,hello%20world")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mime)
	assert.Equal(t, "hello world", string(data))

	_, _, err = DecodeDataURL("https://example.com/a.png")
	assert.ErrorIs(t, err, ErrNotData)

	_, _, err = DecodeDataURL("data:image/png;base64")
	assert.Error(t, err)

	_, _, err = DecodeDataURL("data:image/png;base64,!!!")
	assert.Error(t, err)
}
