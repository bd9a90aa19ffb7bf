//go:build linux

package js

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	r := bytes.NewReader([]byte{
		0x10, 0, 0, 0, 0x01, 0x00, 0x81, 3,
		0x20, 0, 0, 0, 0x01, 0x80, 0x02, 6,
		0x30, 0, 0,
	})
	ev, err := decode(r)
	require.NoError(t, err)
	assert.Equal(t, Event{Kind: Button | Init, Number: 3, Value: 1}, ev)
	assert.True(t, ev.IsInit())
	assert.True(t, ev.IsButton())
	assert.Equal(t, "[init] button 3: 1", ev.String())

	ev, err = decode(r)
	require.NoError(t, err)
	assert.True(t, ev.IsAxis())
	assert.False(t, ev.IsInit())
	assert.EqualValues(t, -32767, ev.Value)

	_, err = decode(r)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
