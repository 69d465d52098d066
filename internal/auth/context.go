package auth

import "context"

type ctxKey int

const (
	userIDKey ctxKey = iota
	sessionTokenKey
)

// WithSession stores the authenticated user and the session token in ctx.
func WithSession(ctx context.Context, userID int, token string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, sessionTokenKey, token)
}

func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(userIDKey).(int)
	return userID, ok && userID > 0
}

func SessionTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(sessionTokenKey).(string)
	return token, ok && token != ""
}
