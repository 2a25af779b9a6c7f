package common

import (
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#ff3333", color.NRGBA{R: 0xff, G: 0x33, B: 0x33, A: 0xff}},
		{"0x8844FF", color.NRGBA{R: 0x88, G: 0x44, B: 0xff, A: 0xff}},
		{"c0a0ff", color.NRGBA{R: 0xc0, G: 0xa0, B: 0xff, A: 0xff}},
		{"#00000080", color.NRGBA{A: 0x80}},
		{"  #ffffff ", color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.NRGBA)
		})
	}
}

func TestParseColorRejects(t *testing.T) {
	for _, in := range []string{"", "#fff", "#ff00zz", "red", "#1234567"} {
		_, err := ParseColor(in)
		assert.Error(t, err, in)
	}
}

func TestColorString(t *testing.T) {
	assert.Equal(t, "#ff6633", RGB(0xff, 0x66, 0x33).String())
	c, err := ParseColor("#11223344")
	require.NoError(t, err)
	assert.Equal(t, "#11223344", c.String())
}

func TestColorUnmarshalYAML(t *testing.T) {
	var v struct {
		Tint *Color `yaml:"tint"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(`tint: "#ff4444"`), &v))
	require.NotNil(t, v.Tint)
	assert.Equal(t, RGB(0xff, 0x44, 0x44), *v.Tint)

	err := yaml.Unmarshal([]byte("tint: [1, 2, 3]"), &v)
	assert.ErrorContains(t, err, "color must be a string")
}

func TestDurationUnmarshalYAML(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"d: 1500", 1500 * time.Millisecond},
		{"d: 0", 0},
		{"d: 12.5", 12500 * time.Microsecond},
		{"d: 1.5s", 1500 * time.Millisecond},
		{"d: 250ms", 250 * time.Millisecond},
	}
	for _, tt := range tests {
		var v struct {
			D Duration `yaml:"d"`
		}
		require.NoError(t, yaml.Unmarshal([]byte(tt.in), &v), tt.in)
		assert.Equal(t, tt.want, v.D.Std(), tt.in)
	}
}

func TestDurationRejectsNegativeAndGarbage(t *testing.T) {
	for _, in := range []string{"d: -1", "d: -2s", "d: soon"} {
		var v struct {
			D Duration `yaml:"d"`
		}
		assert.Error(t, yaml.Unmarshal([]byte(in), &v), in)
	}
}

func TestClampAndWrap(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1, 0, 10))
	assert.Equal(t, 10.0, Clamp(11, 0, 10))
	assert.Equal(t, 5.0, Clamp(5, 0, 10))

	assert.InDelta(t, math.Pi/2, Deg2Rad(90), 1e-12)
	assert.InDelta(t, -math.Pi/2, WrapAngle(3*math.Pi/2), 1e-12)
	assert.InDelta(t, math.Pi, WrapAngle(-math.Pi), 1e-12)
}
