package patch

import (
	"path/filepath"

	"github.com/retroenv/retrogolib/log"
	"github.com/rs/xid"
)

// Session creates buffers sharing one keep policy and tears all of them down
// together at the end of a run.
type Session struct {
	logger  *log.Logger
	policy  KeepPolicy
	dir     string
	buffers []*Buffer
}

// NewSession returns a session for the given keep policy. Temporary buffers
// are placed in dir.
func NewSession(logger *log.Logger, policy KeepPolicy, dir string) *Session {
	return &Session{
		logger: logger,
		policy: policy,
		dir:    dir,
	}
}

// Policy returns the keep policy of the session.
func (s *Session) Policy() KeepPolicy {
	return s.policy
}

// New returns a new open buffer targeting the given path.
func (s *Session) New(path string, mode Mode, origin Origin) *Buffer {
	b := New(s.logger, path, mode, origin, s.policy)
	s.buffers = append(s.buffers, b)
	return b
}

// NewTemp returns a new open buffer targeting a uniquely named file with the
// given extension in the session directory.
func (s *Session) NewTemp(origin Origin, mode Mode, ext string) *Buffer {
	name := origin.String() + "_" + xid.New().String() + ext
	return s.New(filepath.Join(s.dir, name), mode, origin)
}

// Teardown finalizes all buffers of the session. Calling it multiple times
// has no further effect.
func (s *Session) Teardown() {
	for _, b := range s.buffers {
		b.Teardown()
	}
	s.buffers = nil
}
