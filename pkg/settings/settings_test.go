package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/rflight/pkg/device"
	"github.com/robotalks/rflight/pkg/light"
)

func TestCaptureApply(t *testing.T) {
	dev := device.New()
	dev.Switches.MacOS = true
	dev.Switches.SleepEnabled = false
	dev.State.LinkMode = device.LinkBT2
	side := light.Context{Mode: light.ModeBreathe, Light: 1, Speed: 4, Colour: 6}
	logo := light.Context{Mode: light.ModeWaveB, Light: 5, Speed: 0, RGB: true}
	rec := Capture(dev, &side, &logo)
	assert.True(t, rec.Initialized())
	assert.False(t, (&Record{}).Initialized())

	dev2 := device.New()
	side2 := light.Context{Point: 9, Breath: 3}
	var logo2 light.Context
	rec.Apply(dev2, &side2, &logo2)
	assert.Equal(t, side, side2)
	assert.Equal(t, logo, logo2)
	assert.Equal(t, dev.Switches, dev2.Switches)
	assert.Equal(t, device.LinkBT2, dev2.State.LinkMode)
}

func TestApplyIgnoresOutOfRange(t *testing.T) {
	ctx := light.DefaultContext()
	(&Domain{Mode: 9, Light: 6, Speed: 5, Colour: light.ColourCount, Rgb: false}).ApplyTo(&ctx)
	want := light.DefaultContext()
	want.RGB = false
	assert.Equal(t, want, ctx)

	dev := device.New()
	(&Record{LinkMode: 7, SleepEnabled: true}).Apply(dev, &ctx, &ctx)
	assert.Equal(t, device.LinkRF24, dev.State.LinkMode)
}

func TestDefaults(t *testing.T) {
	rec := Defaults()
	dev := device.New()
	dev.Switches.SleepEnabled = false
	dev.Switches.BatteryHold = true
	var side, logo light.Context
	rec.Apply(dev, &side, &logo)
	assert.Equal(t, light.DefaultContext(), side)
	assert.Equal(t, light.DefaultContext(), logo)
	assert.True(t, dev.Switches.SleepEnabled)
	assert.False(t, dev.Switches.BatteryHold)
	assert.EqualValues(t, DefaultBrightnessFlag, rec.DefaultBrightness)
}

func testStore(t *testing.T, s Store) {
	_, err := s.Load()
	require.Equal(t, ErrNotFound, err)

	rec := Defaults()
	rec.Side.Mode = uint32(light.ModeStatic)
	rec.Side.Colour = 4
	rec.MacOs = true
	require.NoError(t, s.Save(rec))
	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, rec.String(), loaded.String())

	require.NoError(t, s.Save(&Record{}))
	loaded, err = s.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded.Side)
	assert.False(t, loaded.MacOs)
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "conf", "settings.pb"))
	testStore(t, s)

	entries, err := os.ReadDir(filepath.Join(dir, "conf"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, os.WriteFile(s.Path, []byte{0xff, 0xff}, 0644))
	_, err = s.Load()
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	s := &MemoryStore{}
	testStore(t, s)
	assert.Equal(t, 2, s.Saves)
}
