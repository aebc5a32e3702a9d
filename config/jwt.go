package config

import "time"

const defaultJWTSecret = "your-secret-key-change-this-in-production"

// JWTSecret and JWTExpiration are replaced by Load.
var (
	JWTSecret     = []byte(defaultJWTSecret)
	JWTExpiration = 24 * time.Hour
)
