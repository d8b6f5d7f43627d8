// Package pg connects clubnotify to PostgreSQL through pgx/v5.
//
// [Connect] builds a *pgxpool.Pool from [Config] and waits for the database
// to answer, backing off between attempts. [Migrate] applies the goose
// migrations found in Config.MigrationsPath, logging through slog.
// [Healthcheck] adapts the pool into a readiness probe.
//
// [Transactor] runs a function inside a transaction and fires commit hooks
// registered through the txhook package once the transaction commits, so
// side effects such as stream delivery never observe rolled back rows.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//
// [IsNotFoundError] and [IsForeignKeyViolationError] classify driver errors
// for the storage layer.
package pg
