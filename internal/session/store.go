// Package session хранит текущую сессию пользователя. Store создаётся
// хост-окружением и явно передаётся компонентам, которым нужен токен.
package session

import (
	"sync"
)

// Session токен доступа и идентификатор пользователя.
type Session struct {
	Token  string
	UserID int64
}

// Valid сообщает, что оба поля заполнены.
func (s Session) Valid() bool {
	return s.Token != "" && s.UserID != 0
}

// Store потокобезопасное хранилище сессии.
type Store struct {
	mu      sync.RWMutex
	current Session
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{}
}

// Current возвращает сессию и признак её наличия.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current.Valid()
}

// Token возвращает токен, если он есть.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// Set сохраняет сессию после успешного входа.
func (s *Store) Set(token string, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Session{Token: token, UserID: userID}
}

// Clear сбрасывает сессию.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Session{}
}

// LoggedIn сообщает, есть ли действующая сессия.
func (s *Store) LoggedIn() bool {
	_, ok := s.Current()
	return ok
}
