package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPopup_Defaults(t *testing.T) {
	p := NewPopup("p1", PopupInput{Message: sp("hello")}, testNow)

	assert.Equal(t, PopupPositionCenter, p.Position)
	assert.Equal(t, PopupModeTemporary, p.Mode)
	assert.Equal(t, PopupPriorityPlain, p.Priority)
	assert.True(t, p.Visible)
	require.NotNil(t, p.DurationSeconds)
	assert.Equal(t, DefaultPopupDuration, *p.DurationSeconds)
	require.NotNil(t, p.ExpiresAt)
	assert.True(t, p.ExpiresAt.Equal(testNow.Add(DefaultPopupDuration*time.Second)))
	assert.True(t, p.CreatedAt.Equal(p.UpdatedAt))
}

func TestNewPopup_ManualNeverExpires(t *testing.T) {
	p := NewPopup("p1", PopupInput{Message: sp("hello"), Mode: sp(PopupModeManual)}, testNow)
	assert.Nil(t, p.ExpiresAt)
	assert.True(t, p.IsActive(testNow.Add(1000*time.Hour)))
}

func TestPopup_IsActive(t *testing.T) {
	exp := testNow.Add(time.Minute)
	cases := []struct {
		name string
		p    Popup
		at   time.Time
		want bool
	}{
		{"visible manual", Popup{Visible: true}, testNow, true},
		{"hidden", Popup{Visible: false}, testNow, false},
		{"before expiry", Popup{Visible: true, ExpiresAt: &exp}, testNow, true},
		{"at expiry", Popup{Visible: true, ExpiresAt: &exp}, exp, false},
		{"after expiry", Popup{Visible: true, ExpiresAt: &exp}, exp.Add(time.Second), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.p.IsActive(tc.at), tc.name)
	}
}

func TestPopupInput_ApplySwitchToManualClearsExpiry(t *testing.T) {
	p := NewPopup("p1", PopupInput{Message: sp("hello")}, testNow)
	later := testNow.Add(5 * time.Second)

	updated := PopupInput{Mode: sp(PopupModeManual)}.Apply(p, later)
	assert.Nil(t, updated.ExpiresAt)
	assert.True(t, updated.CreatedAt.Equal(testNow))
	assert.True(t, updated.UpdatedAt.Equal(later))
	assert.Equal(t, "hello", updated.Message)
}
