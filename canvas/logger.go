package canvas

import "go.uber.org/zap"

var logger = zap.NewNop()

// SetLogger routes this package's diagnostics to the given logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}
