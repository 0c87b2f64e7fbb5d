package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "rl:generic:203.0.113.7", Key(ScopeGeneric, "203.0.113.7"))
	assert.Equal(t, "rl:login:unknown", Key(ScopeLogin, ""))
	assert.Equal(t, "rl:login:unknown", Key(ScopeLogin, "   "))
	assert.Equal(t, "rl:list:2001_db8__1", Key(ScopeList, "2001:db8::1"))

	// a crafted key cannot address another scope's window
	assert.NotEqual(t, Key(ScopeGeneric, "x"), Key(Scope("generic:x"), ""))
}

func TestWindowSeconds(t *testing.T) {
	assert.Equal(t, 60, WindowSeconds(time.Minute))
	assert.Equal(t, 3600, WindowSeconds(time.Hour))
	assert.Equal(t, 2, WindowSeconds(1500*time.Millisecond))
	assert.Equal(t, 1, WindowSeconds(0))
}

func TestDefaultPolicies(t *testing.T) {
	p := DefaultPolicies()
	assert.Equal(t, Policy{Scope: ScopeGeneric, Limit: 100, Window: time.Minute}, p[ScopeGeneric])
	assert.Equal(t, 100, p[ScopeList].Limit)
	assert.Equal(t, time.Hour, p[ScopeList].Window)
	assert.Equal(t, 10, p[ScopeCreate].Limit)
	assert.Equal(t, 5, p[ScopeLogin].Limit)
	assert.Equal(t, 60, p[ScopeLogin].WindowSeconds())
	for scope := range p {
		assert.True(t, scope.IsValid())
	}
	assert.False(t, Scope("burst").IsValid())
}
