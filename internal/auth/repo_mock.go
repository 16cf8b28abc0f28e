package auth

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
)

var _ authRepo = (*repoMock)(nil)

var (
	errUniqueViolation = &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	errConnRefused     = &pgconn.PgError{Code: "08006", Message: "connection failure"}
)

// repoMock is an in-memory authRepo used in unit tests.
type repoMock struct {
	mutex    sync.Mutex
	users    map[int]*User
	sessions map[string]*Session
	nextID   int

	// when set, returned by every call
	forcedErr error
}

func newRepoMock() *repoMock {
	return &repoMock{
		users:    make(map[int]*User),
		sessions: make(map[string]*Session),
		nextID:   1,
	}
}

func (r *repoMock) AddUser(_ context.Context, user User) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.forcedErr != nil {
		return nil, r.forcedErr
	}

	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, errUniqueViolation
		}
	}

	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = &user
	return &user, nil
}

func (r *repoMock) GetUserByUsername(_ context.Context, username string) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.forcedErr != nil {
		return nil, r.forcedErr
	}

	for _, u := range r.users {
		if u.Username == username {
			userCopy := *u
			return &userCopy, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *repoMock) GetUserByID(_ context.Context, id int) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.forcedErr != nil {
		return nil, r.forcedErr
	}

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	userCopy := *u
	return &userCopy, nil
}

func (r *repoMock) AddSession(_ context.Context, session Session) (*Session, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.forcedErr != nil {
		return nil, r.forcedErr
	}

	session.ID = r.nextID
	r.nextID++
	r.sessions[session.Token] = &session
	return &session, nil
}

func (r *repoMock) GetSessionByToken(_ context.Context, token string) (*Session, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.forcedErr != nil {
		return nil, r.forcedErr
	}

	s, ok := r.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sessionCopy := *s
	return &sessionCopy, nil
}

func (r *repoMock) DeleteSessionByToken(_ context.Context, token string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.forcedErr != nil {
		return r.forcedErr
	}

	delete(r.sessions, token)
	return nil
}

func (r *repoMock) sessionsCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.sessions)
}
