// Package logger builds *slog.Logger instances through functional options and
// provides attribute constructors so every component names its log fields the
// same way.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithFormat(logger.FormatText),
//	    logger.WithAttr(logger.Component("steamapi")),
//	)
//
//	log.Info("authenticated",
//	    logger.SteamID(76561197960287930),
//	    logger.Duration(time.Since(start)),
//	)
//
// Helpers such as Error return an empty slog.Attr for nil input, which slog
// handlers drop, so callers do not need nil checks:
//
//	log.Warn("attempt failed", logger.Error(err))
//
// ParseLevel and ParseFormat turn configuration strings into options values.
package logger
