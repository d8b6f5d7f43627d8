// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for struct parsing. Each package of the service
// owns a Config struct with env tags, and the binary loads them one by one:
//
//	var (
//		pgCfg     pg.Config
//		streamCfg stream.Config
//	)
//	config.MustLoad(&pgCfg)
//	config.MustLoad(&streamCfg)
//
// The default .env in the working directory is read on the first Load. Extra
// files can be read with LoadEnv. Structs implementing Validator are checked
// after parsing and fail with ErrInvalidConfig.
//
// WithEnvironment parses from an explicit map, which keeps tests independent
// of the process environment.
package config
