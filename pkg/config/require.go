package config

import (
	"errors"
	"fmt"
	"log"
)

// Require returns an error naming each listed variable that Load left empty.
func (c Config) Require(envNames ...string) error {
	values := map[string]bool{
		"DATABASE_URL":  c.DatabaseURL != "",
		"JWT_SECRET":    len(c.JWTSecret) > 0,
		"REDIS_ADDR":    c.RedisAddr != "",
		"KAFKA_BROKERS": len(c.KafkaBrokers) > 0,
		"ELASTIC_URL":   c.ElasticURL != "",
	}

	var errs []error
	for _, name := range envNames {
		set, known := values[name]
		if !known {
			errs = append(errs, fmt.Errorf("config: %s is not a known setting", name))
			continue
		}
		if !set {
			errs = append(errs, fmt.Errorf("config: missing required env %s", name))
		}
	}
	return errors.Join(errs...)
}

// MustRequire aborts start-up when Require fails.
func (c Config) MustRequire(envNames ...string) {
	if err := c.Require(envNames...); err != nil {
		log.Fatal(err)
	}
}
