package duration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseMinutes(t *testing.T) {
	cases := map[string]int{
		"PT2H30M":   150,
		"PT45M":     45,
		"PT3H":      180,
		"PT0H45M":   45,
		"PT26H5M":   1565,
		"PT":        0,
		"":          0,
		"garbage":   0,
		"2H30M":     0,
		"P1DT":      0,
		"xxPT1H1Mx": 61,
	}

	for in, want := range cases {
		assert.Equal(t, want, ParseMinutes(in), "ParseMinutes(%q)", in)
	}
}

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"PT2H30M": "2h 30m",
		"PT0H45M": "45m",
		"PT5H0M":  "5h",
		"PT5H":    "5h",
		"PT7M":    "7m",
		"PT0H0M":  "",
		"":        "",
		"garbage": "",
	}

	for in, want := range cases {
		assert.Equal(t, want, Format(in), "Format(%q)", in)
	}
}

func TestFromDuration(t *testing.T) {
	assert.Equal(t, "PT1H30M", FromDuration(90*time.Minute))
	assert.Equal(t, "PT0H45M", FromDuration(45*time.Minute+20*time.Second))
	assert.Equal(t, "PT0H0M", FromDuration(-time.Hour))
	assert.Equal(t, "PT6H0M", FromMinutes(360))

	// round trip through the parser
	assert.Equal(t, 135, ParseMinutes(FromMinutes(135)))
}
