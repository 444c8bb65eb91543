package utils

import (
	"context"
)

type contextKey string

const (
	ContextKeyUserId        contextKey = "userId"
	ContextKeyUserName      contextKey = "userName"
	ContextKeyClientIp      contextKey = "clientIp"
	ContextKeyCorrelationId contextKey = "correlationId"
)

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(ContextKeyUserId).(int)
	return v, ok
}

func GetUserNameFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyUserName).(string)
	return v, ok
}

func GetClientIpFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyClientIp).(string)
	return v, ok
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyCorrelationId).(string)
	return v, ok
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return context.WithValue(ctx, ContextKeyUserId, userId)
}

func SetUserNameInContext(ctx context.Context, userName string) context.Context {
	return context.WithValue(ctx, ContextKeyUserName, userName)
}

func SetClientIpInContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ContextKeyClientIp, ip)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return context.WithValue(ctx, ContextKeyCorrelationId, correlationId)
}
