// Package duration converts ISO-8601 "PTnHnM" strings to minutes and to
// short human-readable labels. Malformed input degrades to a zero duration.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var isoPattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?`)

// Parts returns the hour and minute components of s, or zeros when s does
// not contain a PT designator.
func Parts(s string) (hours, minutes int) {
	m := isoPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0
	}
	return atoi(m[1]), atoi(m[2])
}

// ParseMinutes returns the total number of minutes encoded in s.
func ParseMinutes(s string) int {
	h, m := Parts(s)
	return h*60 + m
}

// Format renders s as "<H>h <M>m", omitting zero components.
func Format(s string) string {
	if s == "" {
		return ""
	}
	h, m := Parts(s)

	var b strings.Builder
	if h > 0 {
		fmt.Fprintf(&b, "%dh", h)
	}
	if m > 0 {
		fmt.Fprintf(&b, " %dm", m)
	}
	return strings.TrimSpace(b.String())
}

// FromDuration encodes d as "PT<H>H<M>M". Negative durations encode as zero.
func FromDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Minute)
	return fmt.Sprintf("PT%dH%dM", total/60, total%60)
}

// FromMinutes encodes a minute count the same way as FromDuration.
func FromMinutes(minutes int) string {
	return FromDuration(time.Duration(minutes) * time.Minute)
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// only reachable on overflow
		return 0
	}
	return n
}
