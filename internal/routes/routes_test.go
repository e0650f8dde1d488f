package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		path string
		want View
		ok   bool
	}{
		{"/", ViewLogin, true},
		{"", ViewLogin, true},
		{"/register", ViewRegister, true},
		{"/register/", ViewRegister, true},
		{"register", ViewRegister, true},
		{"/dashboard?tab=profile", ViewDashboard, true},
		{"/dashboard#top", ViewDashboard, true},
		{"//", ViewLogin, true},
		{"/settings", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r, ok := Lookup(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, r.View)
		})
	}
}

func TestAll(t *testing.T) {
	all := All()
	assert.Len(t, all, 3)
	assert.Equal(t, Login, all[0].Path)

	// Only the dashboard needs a session
	for _, r := range all {
		assert.Equal(t, r.Path == Dashboard, r.RequiresSession, r.Path)
	}

	all[0].Path = "/mutated"
	_, ok := Lookup("/mutated")
	assert.False(t, ok)
}
