package session

import "sync"

// Store keeps one Session per chat. Updates of one chat run one at a time;
// different chats never wait on each other.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]Session
	locks    map[int64]*sync.Mutex
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]Session),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// Get returns the session of chatID, or a fresh one.
func (s *Store) Get(chatID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[chatID]; ok {
		return sess
	}
	return New()
}

// Update applies fn to the session of chatID and stores the result. Calls for
// the same chat are serialized, so fn may block on I/O without losing a
// concurrent update. A result equal to New forgets the chat.
func (s *Store) Update(chatID int64, fn func(Session) Session) Session {
	l := s.chatLock(chatID)
	l.Lock()
	defer l.Unlock()

	next := fn(s.Get(chatID))

	s.mu.Lock()
	defer s.mu.Unlock()
	if next == New() {
		delete(s.sessions, chatID)
	} else {
		s.sessions[chatID] = next
	}
	return next
}

func (s *Store) chatLock(chatID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[chatID]
	if !ok {
		l = new(sync.Mutex)
		s.locks[chatID] = l
	}
	return l
}

// Len returns the number of chats with a non-initial session.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
