// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package homesync

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// StaticToken wraps a fixed bearer token in a TokenFunc. Useful in tests
// and for hosts that refresh the credential by swapping the gateway.
func StaticToken(token string) TokenFunc {
	return func(ctx context.Context) (string, error) {
		return token, nil
	}
}

// UserIDFromToken extracts the user identifier from the externally-issued
// bearer token's `sub` claim, for scoping gateway queries. The token is not
// verified here: the signing secret lives with the auth provider and the
// remote re-validates every call.
func UserIDFromToken(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return "", fmt.Errorf("failed to parse bearer token: %w", err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("bearer token missing sub (user ID) claim")
	}
	return claims.Subject, nil
}
