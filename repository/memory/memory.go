// Package memory keeps repositories in process memory. The API handler and
// client tests run the full server stack on it without Postgres or Redis.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// Store backs every repository in this package with one lock.
type Store struct {
	mu       sync.RWMutex
	tasks    map[domain.TaskID]domain.Task
	order    []domain.TaskID
	users    map[string]domain.User
	sessions map[string]domain.Session
	now      func() time.Time
}

func New() *Store {
	return &Store{
		tasks:    make(map[domain.TaskID]domain.Task),
		users:    make(map[string]domain.User),
		sessions: make(map[string]domain.Session),
		now:      time.Now,
	}
}

func (s *Store) Tasks() repository.TaskRepository       { return taskRepo{s} }
func (s *Store) Subtasks() repository.SubtaskRepository { return subtaskRepo{s} }
func (s *Store) Users() repository.UserRepository       { return userRepo{s} }
func (s *Store) Sessions() repository.SessionRepository { return sessionRepo{s} }

type taskRepo struct{ s *Store }

func (r taskRepo) GetByID(_ context.Context, id domain.TaskID) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	task, ok := r.s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	out := task.Clone()
	return &out, nil
}

func (r taskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Task{}
	skipped := 0
	for _, id := range r.s.order {
		task := r.s.tasks[id]
		if filter.UserID != "" && task.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		out = append(out, task.Clone())
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r taskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if task.ID == "" {
		task.ID = domain.TaskID(uuid.NewString())
	}
	if _, exists := r.s.tasks[task.ID]; exists {
		return nil, domain.NewError(domain.ErrCodeConflict, "task already exists")
	}
	now := r.s.now()
	task.CreatedAt = &now
	task.UpdatedAt = &now
	for i := range task.Subtasks {
		if task.Subtasks[i].ID == "" {
			task.Subtasks[i].ID = domain.TaskID(uuid.NewString())
		}
	}
	if task.Subtasks == nil {
		task.Subtasks = []domain.Subtask{}
	}
	r.s.tasks[task.ID] = task.Clone()
	r.s.order = append(r.s.order, task.ID)
	out := task.Clone()
	return &out, nil
}

func (r taskRepo) Update(_ context.Context, task *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	now := r.s.now()
	updated := task.Clone()
	updated.Subtasks = current.Subtasks
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = &now
	r.s.tasks[task.ID] = updated
	task.UpdatedAt = &now
	return nil
}

func (r taskRepo) Delete(_ context.Context, id domain.TaskID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	for i, have := range r.s.order {
		if have == id {
			r.s.order = append(r.s.order[:i], r.s.order[i+1:]...)
			break
		}
	}
	return nil
}

type subtaskRepo struct{ s *Store }

func (r subtaskRepo) Add(_ context.Context, taskID domain.TaskID, sub *domain.Subtask) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	task, ok := r.s.tasks[taskID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if sub.ID == "" {
		sub.ID = domain.TaskID(uuid.NewString())
	}
	task.Subtasks = append(append([]domain.Subtask(nil), task.Subtasks...), *sub)
	r.s.tasks[taskID] = task
	return nil
}

func (r subtaskRepo) Update(_ context.Context, taskID domain.TaskID, sub *domain.Subtask) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	task, ok := r.s.tasks[taskID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	task = task.Clone()
	for i := range task.Subtasks {
		if task.Subtasks[i].ID == sub.ID {
			task.Subtasks[i] = *sub
			r.s.tasks[taskID] = task
			return nil
		}
	}
	return domain.ErrSubtaskNotFound
}

func (r subtaskRepo) Delete(_ context.Context, taskID, subtaskID domain.TaskID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	task, ok := r.s.tasks[taskID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	task = task.Clone()
	for i := range task.Subtasks {
		if task.Subtasks[i].ID == subtaskID {
			task.Subtasks = append(task.Subtasks[:i], task.Subtasks[i+1:]...)
			r.s.tasks[taskID] = task
			return nil
		}
	}
	return domain.ErrSubtaskNotFound
}

type userRepo struct{ s *Store }

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r userRepo) Upsert(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, other := range r.s.users {
		if id != user.ID && other.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	now := r.s.now()
	if existing, ok := r.s.users[user.ID]; ok {
		user.CreatedAt = existing.CreatedAt
	} else {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.PasswordHash = hash
	r.s.users[id] = user
	return nil
}

type sessionRepo struct{ s *Store }

func (r sessionRepo) Get(_ context.Context, id string) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	session, ok := r.s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r sessionRepo) Save(_ context.Context, session *domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[session.ID] = *session
	return nil
}

func (r sessionRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, id)
	return nil
}

func (r sessionRepo) Extend(_ context.Context, id string, ttlSeconds int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	session, ok := r.s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.ExpiresAt = r.s.now().Add(time.Duration(ttlSeconds) * time.Second)
	r.s.sessions[id] = session
	return nil
}

func (r sessionRepo) DeleteForUser(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, session := range r.s.sessions {
		if session.UserID == userID {
			delete(r.s.sessions, id)
		}
	}
	return nil
}

// SessionIDs lists the live session ids of a user, sorted.
func (s *Store) SessionIDs(userID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, session := range s.sessions {
		if session.UserID == userID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
