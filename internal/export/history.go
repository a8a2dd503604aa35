package export

import (
	"go.uber.org/zap"

	"sm-kiosk/internal/model"
)

// Recorder returns a callback that appends each finished run to the history
// file at path. A "{date}" token in path is expanded from the run's start
// time. Write failures are logged, never returned: a broken log must not
// block the kiosk. An empty path yields nil.
func Recorder(path string, logger *zap.Logger) func(model.Run) {
	if path == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(r model.Run) {
		target := ExpandDate(path, r.StartedAt)
		if err := AppendRuns(target, r); err != nil {
			logger.Warn("failed to record run", zap.String("path", target), zap.Error(err))
			return
		}
		logger.Debug("run recorded", zap.String("path", target), zap.Stringer("outcome", r.Outcome))
	}
}
