package redis

import "errors"

var (
	ErrEmptyConnectionURL           = errors.New("redis: empty connection url, set REDIS_URL")
	ErrFailedToParseRedisConnString = errors.New("redis: invalid connection url")
	ErrRedisNotReady                = errors.New("redis: server not ready after retries")
	ErrHealthcheckFailed            = errors.New("redis: healthcheck failed")
)
