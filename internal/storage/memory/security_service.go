package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/order-module/internal/domain"
)

// securityServiceInMemory — статический SecurityService: users и их
// permission-наборы задаются при конструировании или через Grant.
type securityServiceInMemory struct {
	mu          sync.RWMutex
	users       map[string]domain.User
	permissions map[string][]domain.Permission
}

// NewSecurityService возвращает LDAP-заглушку для разработки и тестов.
func NewSecurityService() *securityServiceInMemory {
	return &securityServiceInMemory{
		users:       make(map[string]domain.User),
		permissions: make(map[string][]domain.Permission),
	}
}

// Grant регистрирует пользователя и назначает ему permissions,
// сохраняя порядок назначения.
func (s *securityServiceInMemory) Grant(userName string, perms ...domain.Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userName]; !ok {
		s.users[userName] = domain.User{ID: userName, UserName: userName}
	}
	s.permissions[userName] = append(s.permissions[userName], perms...)
}

// FindUserByName возвращает пользователя или ErrUserNotFound.
func (s *securityServiceInMemory) FindUserByName(_ context.Context, userName string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userName]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

// GetUserPermissions возвращает permissions пользователя в порядке назначения.
// Неизвестный пользователь получает пустой набор, а не ошибку: отсутствие
// грантов — авторизационный факт, не сбой.
func (s *securityServiceInMemory) GetUserPermissions(_ context.Context, userName string) ([]domain.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	perms := s.permissions[userName]
	result := make([]domain.Permission, len(perms))
	copy(result, perms)
	return result, nil
}

var _ domain.SecurityService = (*securityServiceInMemory)(nil)
