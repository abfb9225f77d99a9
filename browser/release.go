package browser

import "log/slog"

// Release runs closeFn and logs a warning if it fails. It never returns the
// error, so releasing resources cannot replace the outcome of the operation
// that used them.
func Release(logger *slog.Logger, what string, closeFn func() error) {
	if logger == nil {
		logger = slog.Default()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Panic while releasing resource", slog.String("resource", what), slog.Any("panic", r))
		}
	}()

	if err := closeFn(); err != nil {
		logger.Warn("Failed to release resource", slog.String("resource", what), slog.Any("err", err))
	}
}
