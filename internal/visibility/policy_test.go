package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicyAcceptsEveryName(t *testing.T) {
	for _, p := range Policies() {
		got, err := ParsePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestParsePolicyNormalizesInput(t *testing.T) {
	got, err := ParsePolicy("  Dodge_Active ")
	require.NoError(t, err)
	assert.Equal(t, DodgeActive, got)
}

func TestParsePolicyUnknownFallsBack(t *testing.T) {
	got, err := ParsePolicy("sometimes")
	assert.Error(t, err)
	assert.Equal(t, WindowsGoBelow, got)
	assert.False(t, Policy(99).Valid())
	assert.Equal(t, "policy(99)", Policy(99).String())
}

func TestHideCapable(t *testing.T) {
	capable := map[Policy]bool{
		AutoHide:        true,
		DodgeActive:     true,
		DodgeMaximized:  true,
		DodgeAllWindows: true,
		WindowsCanCover: true,
	}
	for _, p := range Policies() {
		assert.Equal(t, capable[p], p.HideCapable(), p.String())
	}
	assert.True(t, None.Inactive())
	assert.True(t, WindowsAlwaysCover.Inactive())
	assert.False(t, AutoHide.Inactive())
}
