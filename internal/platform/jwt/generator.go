// Package jwtmw は匿名端末トークンの発行と検証ミドルウェアを提供します。
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenType は端末トークンを示すtypクレームの値です。
const tokenType = "device"

// Generator defines the interface for device token generation.
type Generator interface {
	// GenerateDeviceToken creates a signed JWT carrying the device ID as its subject.
	GenerateDeviceToken(deviceID string) (string, error)
}

// generator implements the Generator interface.
type generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) *generator {
	return &generator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateDeviceToken creates a signed HS256 token with standard claims.
func (g *generator) GenerateDeviceToken(deviceID string) (string, error) {
	if deviceID == "" {
		return "", errors.New("device id is required")
	}
	now := g.now()
	claims := jwt.MapClaims{
		"sub": deviceID,
		"typ": tokenType,
		"iat": now.Unix(),
		"exp": now.Add(g.expiration).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
