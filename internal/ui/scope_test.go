package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeRenewCancelsPrevious(t *testing.T) {
	var s Scope
	assert.Error(t, s.Context().Err())

	first := s.Renew()
	gen := s.Gen()
	assert.NoError(t, first.Err())

	second := s.Renew()
	assert.Error(t, first.Err())
	assert.NoError(t, second.Err())
	assert.False(t, s.Current(gen))
	assert.True(t, s.Current(s.Gen()))

	s.Cancel()
	assert.Error(t, second.Err())
	assert.Error(t, s.Context().Err())
}

func TestLayoutContentHeight(t *testing.T) {
	assert.Equal(t, 22, NewLayout(80, 24).ContentHeight())
	assert.Equal(t, 0, NewLayout(80, 1).ContentHeight())
}
