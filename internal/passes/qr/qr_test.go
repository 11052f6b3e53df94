package qr_test

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/jaevanlith/lorre-app/internal/passes/qr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateProducesPNG(t *testing.T) {
	data, err := qr.Generate("pass-1")
	require.NoError(t, err)
	require.NotEmpty(t, data)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}

func TestGenerateDiffersPerPass(t *testing.T) {
	a, err := qr.Generate("pass-1")
	require.NoError(t, err)
	b, err := qr.Generate("pass-2")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
