package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUserID(t *testing.T) {
	cases := []struct {
		in   string
		want UserID
		zero bool
	}{
		{"u-123", "u-123", false},
		{"  u-123  ", "u-123", false},
		{"", "", true},
		{"   ", "", true},
	}
	for _, tc := range cases {
		got := NormalizeUserID(tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
		assert.Equal(t, tc.zero, got.IsZero(), "input %q", tc.in)
	}
}
