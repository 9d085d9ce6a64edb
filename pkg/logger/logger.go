package logger

import "go.uber.org/zap"

// New crea el logger de la aplicación según el entorno
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}

	return zap.NewDevelopment()
}
