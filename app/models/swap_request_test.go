package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwapRequestCanTransition(t *testing.T) {
	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{SwapStatusPending, SwapStatusAccepted, true},
		{SwapStatusPending, SwapStatusDeclined, true},
		{SwapStatusPending, SwapStatusCanceled, true},
		{SwapStatusPending, SwapStatusCompleted, false},
		{SwapStatusAccepted, SwapStatusCompleted, true},
		{SwapStatusAccepted, SwapStatusCanceled, true},
		{SwapStatusAccepted, SwapStatusDeclined, false},
		{SwapStatusAccepted, SwapStatusPending, false},
		{SwapStatusDeclined, SwapStatusAccepted, false},
		{SwapStatusCanceled, SwapStatusCompleted, false},
		{SwapStatusCompleted, SwapStatusCanceled, false},
	}

	for _, tc := range cases {
		req := SwapRequest{Status: tc.from}
		assert.Equal(t, tc.allowed, req.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
