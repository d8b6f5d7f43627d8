// Package userdir resolves the users that notifications are addressed to.
//
// Three notifications.UserDirectory implementations are provided:
//
//   - MemoryDirectory keeps users in a map and suits tests and local runs.
//   - PostgresDirectory reads the users table.
//   - CachedDirectory puts a TTL-bounded LRU in front of any directory.
//
// Unknown ids always produce notifications.ErrUserNotFound.
//
//	dir := userdir.NewCachedDirectory(
//		userdir.NewPostgresDirectory(pool),
//		userdir.WithCapacity(4096),
//		userdir.WithTTL(5*time.Minute),
//	)
package userdir
