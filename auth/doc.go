// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication and token generation utilities.

# Session Tokens

Session tokens use HMAC-SHA256 to bind a user ID to a server-side salt:

	token := auth.GenerateSessionToken(userID, salt)
	userID, err := auth.ParseSessionToken(token, salt)

A token is base64url(userID) + "." + base64url(HMAC signature), URL-safe
and unpadded. Since it is deterministic, validation needs no token table;
ParseSessionToken returns ErrInvalidToken for malformed or forged input.

# ID Generation

Random hex IDs for records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
