// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package voting is the student voting state machine. It validates targets
// against the group catalog, applies transitions through the store and
// returns a fresh Outcome for the transport layer to cache in the session.
package voting
