package models

import (
	"testing"

	"ers/src/types"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		hasQR    bool
		scans    int
		maxScans int
		want     types.RegistrationStatus
	}{
		{false, 0, 1, types.REGISTRATION_PENDING},
		{false, 0, 4, types.REGISTRATION_PENDING},
		{true, 0, 1, types.REGISTRATION_ACTIVE},
		{true, 0, 4, types.REGISTRATION_ACTIVE},
		{true, 1, 4, types.REGISTRATION_CHECKEDIN},
		{true, 3, 4, types.REGISTRATION_CHECKEDIN},
		{true, 4, 4, types.REGISTRATION_EXHAUSTED},
		{true, 1, 1, types.REGISTRATION_EXHAUSTED},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, StatusFor(c.hasQR, c.scans, c.maxScans))
	}
}

func TestMaxScansFor(t *testing.T) {
	perMember := &EventForm{ScanPolicy: types.SCAN_POLICY_PER_MEMBER}
	single := &EventForm{ScanPolicy: types.SCAN_POLICY_SINGLE}

	assert.Equal(t, 4, perMember.MaxScansFor(4))
	assert.Equal(t, 1, perMember.MaxScansFor(0))
	assert.Equal(t, 1, single.MaxScansFor(4))

	var missing *EventForm
	assert.Equal(t, 1, missing.MaxScansFor(4))
}
