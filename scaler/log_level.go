package scaler

import (
	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avpicture/logger"
)

func LogLevelToAstiav(level logger.Level) astiav.LogLevel {
	switch level {
	case logger.LevelTrace:
		return astiav.LogLevelTrace
	case logger.LevelDebug:
		return astiav.LogLevelDebug
	case logger.LevelInfo:
		return astiav.LogLevelInfo
	case logger.LevelWarning:
		return astiav.LogLevelWarning
	case logger.LevelError:
		return astiav.LogLevelError
	case logger.LevelPanic:
		return astiav.LogLevelPanic
	case logger.LevelFatal:
		return astiav.LogLevelFatal
	default:
		return astiav.LogLevelQuiet
	}
}

func LogLevelFromAstiav(level astiav.LogLevel) logger.Level {
	switch level {
	case astiav.LogLevelTrace:
		return logger.LevelTrace
	case astiav.LogLevelDebug, astiav.LogLevelVerbose:
		return logger.LevelDebug
	case astiav.LogLevelInfo:
		return logger.LevelInfo
	case astiav.LogLevelWarning:
		return logger.LevelWarning
	case astiav.LogLevelError:
		return logger.LevelError
	case astiav.LogLevelPanic:
		return logger.LevelPanic
	case astiav.LogLevelFatal:
		return logger.LevelFatal
	default:
		return logger.LevelUndefined
	}
}
