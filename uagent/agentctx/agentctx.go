// Package agentctx implements the agent context of spec.md section 4.6: a
// cache of an agent's identities with a forward-only cursor, sitting in
// front of any Agent (typically an openssh.Dialer).
package agentctx

import (
	"github.com/tredeske/usshagent/uagent"
)

// Agent is the capability a Context needs from its underlying transport:
// exactly the two client operations uagent.Engine exposes, so either a
// live openssh.Dialer or a test double satisfies it.
type Agent interface {
	GetIdentities(cb func([]uagent.Identity, error))
	Sign(pubkey uagent.ParsedKey, data []byte, opts *uagent.SignOptions, cb func([]byte, error))
}

// state_ is the Fresh/Loading/Loaded lifecycle of spec.md section 4.6.
type state_ int

const (
	stateFresh state_ = iota
	stateLoading
	stateLoaded
)

// Context caches an agent's identity list and a cursor over it, per
// spec.md section 4.6.  Identities are fetched at most once per Context
// lifetime; concurrent Init calls coalesce onto a single fetch.
//
// Not safe for concurrent use - same single-owner model as uagent.Engine.
type Context struct {
	agent Agent
	keys  uagent.KeyParser

	state    state_
	waiters  []func(error)
	cached   []uagent.Identity
	loadErr  error
	cursor   int
}

// New returns a Context in the Fresh state, wrapping agent.  keys
// re-parses each identity the agent returns, per spec.md section 4.6's
// "re-parse each returned key through KeyParser."
func New(agent Agent, keys uagent.KeyParser) *Context {
	return &Context{agent: agent, keys: keys, cursor: -1}
}

// Init fetches identities if this is the first call (Fresh), joins an
// in-flight fetch (Loading), or returns immediately (Loaded), per
// spec.md section 4.6.  cb is always invoked exactly once.
func (c *Context) Init(cb func(error)) {
	switch c.state {
	case stateLoaded:
		cb(nil)

	case stateLoading:
		c.waiters = append(c.waiters, cb)

	case stateFresh:
		c.state = stateLoading
		c.waiters = append(c.waiters, cb)
		c.agent.GetIdentities(c.onIdentities)
	}
}

func (c *Context) onIdentities(keys []uagent.Identity, err error) {
	waiters := c.waiters
	c.waiters = nil

	if err != nil {
		c.state = stateFresh // a failed load leaves the context retriable
		c.loadErr = err
		for _, w := range waiters {
			w(err)
		}
		return
	}

	resolved := make([]uagent.Identity, 0, len(keys))
	for _, id := range keys {
		if id.Key == nil {
			continue
		}
		reparsed, parseErr := c.keys.Parse(id.Key.Marshal())
		if parseErr != nil {
			continue // unsupported key type tolerated, matching uagent's own tolerance
		}
		reparsed.SetComment(id.Comment)
		resolved = append(resolved, uagent.Identity{Key: reparsed, Comment: id.Comment})
	}

	c.cached = resolved
	c.cursor = -1
	c.state = stateLoaded
	c.loadErr = nil
	for _, w := range waiters {
		w(nil)
	}
}

// NextKey advances the cursor and returns the identity now under it, or
// ok=false if the context isn't Loaded or the cursor has passed the end.
func (c *Context) NextKey() (id uagent.Identity, ok bool) {
	if c.state != stateLoaded {
		return uagent.Identity{}, false
	}
	c.cursor++
	if c.cursor >= len(c.cached) {
		c.cursor = len(c.cached) // pin past-end, matching Pos()'s -1 sentinel below
		return uagent.Identity{}, false
	}
	return c.cached[c.cursor], true
}

// CurrentKey returns the identity at the cursor, or ok=false if the
// cursor is past the end or the context isn't Loaded.
func (c *Context) CurrentKey() (id uagent.Identity, ok bool) {
	if c.state != stateLoaded || c.cursor < 0 || c.cursor >= len(c.cached) {
		return uagent.Identity{}, false
	}
	return c.cached[c.cursor], true
}

// Pos returns the current cursor index, or -1 if exhausted or unloaded.
func (c *Context) Pos() int {
	if c.state != stateLoaded || c.cursor < 0 || c.cursor >= len(c.cached) {
		return -1
	}
	return c.cursor
}

// Reset rewinds the cursor so the next NextKey call returns the first
// cached identity again.
func (c *Context) Reset() {
	c.cursor = -1
}

// LoadErr returns the error from the most recent failed Init, or nil if
// the last (or only) attempt succeeded or none has run yet.  A failed
// Init leaves the context Fresh, so the next Init call retries.
func (c *Context) LoadErr() error {
	return c.loadErr
}

// Sign forwards directly to the underlying agent, per spec.md section 4.6.
func (c *Context) Sign(
	pubkey uagent.ParsedKey,
	data []byte,
	opts *uagent.SignOptions,
	cb func([]byte, error),
) {
	c.agent.Sign(pubkey, data, opts, cb)
}

// Len reports the number of cached identities, 0 before Loaded.
func (c *Context) Len() int {
	if c.state != stateLoaded {
		return 0
	}
	return len(c.cached)
}

// Keys returns a defensive copy of the cached identity list, empty
// before Loaded.
func (c *Context) Keys() []uagent.Identity {
	out := make([]uagent.Identity, len(c.cached))
	copy(out, c.cached)
	return out
}
