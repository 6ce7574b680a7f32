package bucketblog

import (
	"io"
	"os"

	"github.com/labstack/gommon/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogging configures the echo logger. With LogFile set, output goes to
// a size-rotated file and the returned closer releases it.
func (a *App) setupLogging() (io.Closer, error) {
	a.Echo.Logger.SetLevel(log.INFO)
	if a.Config.LogFile == "" {
		a.Echo.Logger.SetOutput(os.Stderr)
		return nil, nil
	}
	w := &lumberjack.Logger{
		Filename:   a.Config.LogFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	a.Echo.Logger.SetOutput(w)
	return w, nil
}
