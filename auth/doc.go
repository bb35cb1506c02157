// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides the admin password check and session cookies.

# Admin Password

The shared admin password is configured either in plain text (hashed once at
startup) or as a bcrypt hash:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, attempt)

# Sessions

Sessions are HS256 JWTs stored in an HttpOnly cookie:

	sessions := auth.NewSessions(secret, 12*time.Hour, false)
	err := sessions.Issue(w, auth.Claims{StudentID: "123456789"})
	claims, err := sessions.Read(r)

Claims carry the student ID, the admin flag and a cached copy of the
student's votes. The cache is refreshed after every mutation and never used
to decide whether a vote is allowed.

# ID Generation

	id, err := auth.GenerateID(32) // 64 hex characters

Used for the per-process session secret when none is configured.
*/
package auth
