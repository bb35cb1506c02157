// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package export renders the admin snapshot as an .xlsx workbook with
// Tallies, Ballots and Feedback sheets.
package export
