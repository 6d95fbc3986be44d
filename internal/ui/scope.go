package ui

import "context"

// Scope ties a view's requests to its lifetime. Renew cancels whatever
// the previous scope started and bumps the generation; responses tagged
// with an older generation must be ignored.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	gen    uint64
}

// Renew cancels outstanding requests and starts a new generation.
func (s *Scope) Renew() context.Context {
	s.Cancel()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.gen++
	return s.ctx
}

// Cancel aborts outstanding requests without starting a new generation.
func (s *Scope) Cancel() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Context returns the current generation's context. A scope that was
// never renewed returns a cancelled context.
func (s Scope) Context() context.Context {
	if s.ctx == nil || s.cancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return s.ctx
}

// Gen returns the current generation.
func (s Scope) Gen() uint64 {
	return s.gen
}

// Current reports whether gen is the latest generation.
func (s Scope) Current(gen uint64) bool {
	return gen == s.gen
}
