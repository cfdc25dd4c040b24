// Package logging configures structured logging for the retry fixture.
//
// It wraps log/slog with level and format parsing so the CLI can build a
// logger from flags or environment variables:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.ParseLevel("debug"),
//	    Format: logging.FormatJSON,
//	})
//	logger.Info("listening", "addr", ":3000")
//
// Components accept a *slog.Logger through an option. When none is given
// they use Nop.
package logging
