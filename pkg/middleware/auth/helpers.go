package auth

import "context"

// WithUser returns a context carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userCtxKey, u)
}

// UserFromContext returns the authenticated user, or the zero User.
func UserFromContext(ctx context.Context) User {
	if user, ok := ctx.Value(userCtxKey).(User); ok {
		return user
	}
	return User{}
}

func (m *Middleware) GetUser(ctx context.Context) User { return UserFromContext(ctx) }

func (m *Middleware) IsRole(ctx context.Context, role Role) bool {
	u := UserFromContext(ctx)
	if u.Username == "" {
		return false
	}
	return u.Role.Name == role.Name || m.isAdminRole(u)
}

func (m *Middleware) IsAdmin(ctx context.Context) bool {
	return m.isAdminRole(UserFromContext(ctx))
}

func (m *Middleware) IsUser(ctx context.Context, username string) bool {
	u := UserFromContext(ctx)
	if u.Username == "" {
		return false
	}
	return u.Username == username || m.isAdminRole(u)
}

func (m *Middleware) IsAuthenticated(ctx context.Context) bool {
	return UserFromContext(ctx).Username != ""
}

func (m *Middleware) isAdminRole(u User) bool {
	return m.adminRole != "" && u.Role.Name == m.adminRole
}
