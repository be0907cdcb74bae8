// Package logger buffers log events for the structured report and echoes
// them to a live terminal sink.
//
// # Buffering
//
// Every Logger owns a Buffer. Entries are appended in call order and never
// removed; the report emitter embeds the whole buffer, verbatim, in the JSON
// document it produces. Terminal reports never include buffered text.
//
// # Live output
//
// In terminal mode a slog text handler prints each entry at or above the
// minimum level to stderr as it happens:
//
//	buf := logger.NewBuffer()
//	log := logger.New(buf, logger.NewLiveSink(os.Stderr, logger.LevelInfo), logger.LevelInfo)
//	log.Info("compiling technique")
//
// # Context Propagation
//
//	ctx = logger.WithLogger(ctx, log)
//	logger.FromContext(ctx).Warn("deprecated method")
package logger
