package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJournalQuery_EffectiveLimit(t *testing.T) {
	assert.Equal(t, DefaultJournalLimit, JournalQuery{}.EffectiveLimit())
	assert.Equal(t, 10, JournalQuery{Limit: 10}.EffectiveLimit())
}

func TestClaims_HasScope(t *testing.T) {
	tests := []struct {
		name   string
		scopes []string
		scope  string
		want   bool
	}{
		{name: "exact scope", scopes: []string{ScopeRead}, scope: ScopeRead, want: true},
		{name: "control implies read", scopes: []string{ScopeControl}, scope: ScopeRead, want: true},
		{name: "read does not imply control", scopes: []string{ScopeRead}, scope: ScopeControl, want: false},
		{name: "no scopes", scope: ScopeRead, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Claims{Subject: "ops", Scopes: tt.scopes}
			assert.Equal(t, tt.want, c.HasScope(tt.scope))
		})
	}
}
