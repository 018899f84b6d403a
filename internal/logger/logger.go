package logger

import (
	"github.com/sirupsen/logrus"
)

// Log доступен сразу: до вызова Init пишет в stderr с уровнем info.
var Log = logrus.New()

// Init инициализирует структурированный логгер.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// Используем JSON формат для production, text для development
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	if Log != nil {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

// Setup выбирает уровень и формат по окружению приложения.
func Setup(env, level string) {
	if level == "" {
		level = "info"
		if env == "development" {
			level = "debug"
		}
	}
	Init(level)
	if env == "development" {
		SetTextFormatter()
	}
}
