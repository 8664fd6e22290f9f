// Package logger builds the structured loggers used across todokit.
//
// New returns a *slog.Logger configured through Option functions: output
// format (text or json), minimum level, static attributes such as the
// component name, and ContextExtractor callbacks that copy values out of a
// context.Context into every record.
//
// Attribute helpers (Error, Component, Operation, Username, RequestID,
// Status, ...) keep key names consistent between packages. Helpers return an
// empty slog.Attr for zero values so they can be passed unconditionally.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "todo"),
//	    logger.WithLevelName(cfg.LogLevel),
//	    logger.WithOutput(os.Stderr),
//	)
//	log.InfoContext(ctx, "signed in", logger.Username("alice"))
//
// Library constructors that receive no logger fall back to Discard so that a
// library never writes to the terminal on its own.
package logger
