package frame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustBuild(t *testing.T, cmd byte, payload ...byte) []byte {
	b, err := Build(cmd, payload)
	require.NoError(t, err)
	return b
}

func TestParserSingleFrame(t *testing.T) {
	var p Parser
	in := mustBuild(t, 0xC1, 3, 3, 2, 0, 77)
	for _, b := range in[:len(in)-1] {
		pr := p.Parse(b)
		require.Empty(t, pr.Frames)
		require.NoError(t, pr.Err)
		require.Equal(t, StateReceiving, pr.State)
	}
	pr := p.Parse(in[len(in)-1])
	require.NoError(t, pr.Err)
	require.Equal(t, StateIdle, pr.State)
	require.Len(t, pr.Frames, 1)
	require.Equal(t, byte(0xC1), pr.Frames[0].Cmd)
	require.Equal(t, []byte{3, 3, 2, 0, 77}, pr.Frames[0].Payload)
}

func TestParserSplitAcrossWrites(t *testing.T) {
	var p Parser
	in := append(mustBuild(t, 0xD1, 1, 2, 3), mustBuild(t, 0xF2)...)
	pr := p.Write(in[:4])
	require.Empty(t, pr.Frames)
	pr = p.Write(in[4:9])
	require.Len(t, pr.Frames, 1)
	require.Equal(t, byte(0xD1), pr.Frames[0].Cmd)
	pr = p.Write(in[9:])
	require.Len(t, pr.Frames, 1)
	require.Equal(t, byte(0xF2), pr.Frames[0].Cmd)
	require.Equal(t, StateIdle, pr.State)
}

func TestParserSkipsGarbage(t *testing.T) {
	var p Parser
	in := append([]byte{0x00, 0x13, 0xff}, mustBuild(t, 0xC1, 4)...)
	pr := p.Write(in)
	require.NoError(t, pr.Err)
	require.Len(t, pr.Frames, 1)
	require.Equal(t, []byte{4}, pr.Frames[0].Payload)
}

func TestParserResyncAfterChecksumError(t *testing.T) {
	var p Parser
	bad := mustBuild(t, 0xC1, 1, 2)
	bad[len(bad)-1] ^= 0xff
	good := mustBuild(t, 0xC1, 3)
	pr := p.Write(append(bad, good...))
	require.True(t, errors.Is(pr.Err, ErrChecksumMismatch))
	require.Len(t, pr.Frames, 1)
	require.Equal(t, []byte{3}, pr.Frames[0].Payload)
}

func TestParserResyncOnHeaderInsideRejectedFrame(t *testing.T) {
	var p Parser
	good := mustBuild(t, 0xF2)
	// a stray header whose declared length swallows the real frame
	in := append([]byte{0x5A, 0x00, 0x01, byte(len(good))}, good...)
	in = append(in, 0x00)
	pr := p.Write(in)
	require.True(t, errors.Is(pr.Err, ErrChecksumMismatch))
	require.Len(t, pr.Frames, 1)
	require.Equal(t, byte(0xF2), pr.Frames[0].Cmd)
}

func TestParserTimeout(t *testing.T) {
	var p Parser
	pr := p.Write([]byte{0x5A, 0xC1, 0x01, 0x10, 0x01})
	require.Equal(t, StateReceiving, pr.State)
	pr = p.Timeout()
	require.True(t, errors.Is(pr.Err, ErrShortFrame))
	require.Equal(t, StateIdle, pr.State)

	pr = p.Timeout()
	require.NoError(t, pr.Err)

	pr = p.Write(mustBuild(t, 0xC1, 9))
	require.Len(t, pr.Frames, 1)
}

func TestParserShortAck(t *testing.T) {
	var p Parser
	pr := p.Write([]byte{0x5A, 0xC7, 0xA0})
	require.Len(t, pr.Frames, 1)
	require.True(t, pr.Frames[0].IsAck())
	require.Equal(t, byte(0xC7), pr.Frames[0].Cmd)
}
