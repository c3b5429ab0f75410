package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticLoader(t *testing.T) {
	l := NewStaticLoader(map[string]string{
		"https://a.test/": `<html><body><img src="x.png"></body></html>`,
	})

	page, err := l.Load(context.Background(), "https://a.test/")
	require.NoError(t, err)
	assert.Equal(t, "https://a.test/", page.URL)
	assert.NotNil(t, page.Doc.Root())

	_, err = l.Load(context.Background(), "https://missing.test/")
	require.Error(t, err)

	assert.Equal(t, []string{"https://a.test/", "https://missing.test/"}, l.Loads())
}

func TestStaticLoader_Cancelled(t *testing.T) {
	l := NewStaticLoader(map[string]string{"x": "<p></p>"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Load(ctx, "x")
	require.ErrorIs(t, err, context.Canceled)
}
