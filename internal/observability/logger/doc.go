// Package logger provides a singleton Zap logger with context-based scoping.
//
// # Design Decisions
//
//   - Singleton: una sola instancia global inicializada con Init().
//   - Context Scoping: cada request lleva su propio logger con request_id,
//     y el gateway le agrega subject/purpose una vez verificado el token.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//   - Nunca se loguean tokens crudos ni passwords; usernames van enmascarados.
//
// # Usage
//
//	logger.Init(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Login"))
//	log.Info("login ok", logger.Subject(acc.ID))
package logger
