// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidToken = errors.New("invalid session token")

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateSessionToken mints an HMAC-signed token bound to a user ID.
// Deterministic and verifiable, so nothing needs to be stored server-side.
func GenerateSessionToken(userID, salt string) string {
	return encodeSegment([]byte(userID)) + "." + signSegment(userID, salt)
}

// ParseSessionToken verifies a session token and returns the user ID it is
// bound to. Returns ErrInvalidToken for malformed or forged tokens.
func ParseSessionToken(token, salt string) (string, error) {
	idPart, sigPart, ok := strings.Cut(token, ".")
	if !ok {
		return "", ErrInvalidToken
	}
	idBytes, err := base64.RawURLEncoding.DecodeString(idPart)
	if err != nil {
		return "", ErrInvalidToken
	}
	userID := string(idBytes)
	if !hmac.Equal([]byte(sigPart), []byte(signSegment(userID, salt))) {
		return "", ErrInvalidToken
	}
	return userID, nil
}

func encodeSegment(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func signSegment(userID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(userID))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
