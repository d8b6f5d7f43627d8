// Package redis connects to the Redis server that backs cross-instance
// stream presence.
//
// Connect parses the URL, applies the pool size and pings with retries until
// the server answers or the connect budget runs out. Healthcheck adapts the
// client to the readiness probe used by the HTTP server.
//
//	cfg := redis.Config{ConnectionURL: "redis://localhost:6379/0", RetryAttempts: 3}
//	client, err := redis.Connect(ctx, cfg, log)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	presence := stream.NewRedisPresence(client, instanceID, 90*time.Second)
//	probe := redis.Healthcheck(client, cfg.PingTimeout)
//
// Presence is optional. With an empty REDIS_URL, Config.Enabled reports false
// and Connect returns ErrEmptyConnectionURL without dialing.
package redis
