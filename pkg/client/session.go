package client

import "sync"

// Session carries the bearer token of the signed-in user. It is passed
// explicitly to every component that needs it; components that must react to
// a forced sign-out subscribe to it.
type Session struct {
	mu     sync.Mutex
	token  string
	userID int64
	subs   map[int]func(reason error)
	nextID int
}

func NewSession(token string, userID int64) *Session {
	return &Session{token: token, userID: userID, subs: map[int]func(error){}}
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) UserID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Session) Active() bool {
	return s.Token() != ""
}

// Subscribe registers fn to run on sign-out and returns the func that removes it.
func (s *Session) Subscribe(fn func(reason error)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SignOut clears the token and notifies every subscriber once with reason.
// Later calls are no-ops until a new session is started.
func (s *Session) SignOut(reason error) {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return
	}
	s.token = ""
	s.userID = 0
	subs := make([]func(error), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subs = map[int]func(error){}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(reason)
	}
}
