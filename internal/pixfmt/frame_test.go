package pixfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_Validate_NV12(t *testing.T) {
	fr := &Frame{Format: NV12, Width: 64, Height: 64, Stride: 64, UsedBytes: 64*64 + 64*32}
	require.NoError(t, fr.Validate())

	fr.UsedBytes--
	assert.Error(t, fr.Validate())
}

func TestFrame_Validate_JPEGNeedsNonzeroLength(t *testing.T) {
	fr := &Frame{Format: JPEG, UsedBytes: 0}
	assert.Error(t, fr.Validate())

	fr.UsedBytes = 128
	assert.NoError(t, fr.Validate())
}

func TestFrame_Data(t *testing.T) {
	fr := &Frame{Bytes: []byte{1, 2, 3, 4}, UsedBytes: 2}
	assert.Equal(t, []byte{1, 2}, fr.Data())
}
