package main

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"time"
)

var logger = zap.NewNop()

func SetupLogger(debug bool) error {
	config := zap.NewProductionConfig()
	if debug {
		config = zap.NewDevelopmentConfig()
	}

	l, err := config.Build()
	if err != nil {
		return err
	}

	logger = l
	return nil
}

// RequestLogger writes one line per request after the handler chain returns.
func RequestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
	}

	logger.Info("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Duration("latency", time.Since(start)),
		zap.String("ip", c.IP()),
	)

	return err
}
