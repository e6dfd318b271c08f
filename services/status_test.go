package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus("bogus"))
	assert.False(t, IsValidStatus(""))
	assert.False(t, IsValidStatus("Pending"))
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPending, StatusCancelled, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusShipped, StatusCancelled, true},

		// delivered is terminal, cancellation not allowed
		{StatusDelivered, StatusCancelled, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusProcessing, false},

		// no skipping forward
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusProcessing, StatusDelivered, false},

		// no moving backwards
		{StatusShipped, StatusProcessing, false},
		{StatusProcessing, StatusPending, false},

		// same status is an idempotent no-op
		{StatusPending, StatusPending, true},
		{StatusCancelled, StatusCancelled, true},
		{StatusDelivered, StatusDelivered, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
