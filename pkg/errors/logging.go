package errors

import (
	"go.uber.org/zap"
)

// LogError writes err as a structured log entry. Client errors (4xx) are
// logged at Warn, everything else at Error.
func LogError(logger *zap.Logger, err error, msg string, fields ...zap.Field) {
	if err == nil {
		return
	}

	allFields := make([]zap.Field, 0, len(fields)+2)
	allFields = append(allFields, zap.Error(err))

	code := CodeOf(err)
	allFields = append(allFields, zap.String("error_code", code))
	allFields = append(allFields, fields...)

	if status := GetCodeMapping(code); status >= 400 && status < 500 {
		logger.Warn(msg, allFields...)
		return
	}
	logger.Error(msg, allFields...)
}
