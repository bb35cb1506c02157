// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the classroom voting server.

Students register with a nine-digit student ID, stage votes for exactly three
project groups, confirm them once, and may leave feedback for the groups they
visited. An admin reads the tallies, the per-student ballots and the feedback
log, and can download everything as an .xlsx workbook.

# Starting the Server

With no configuration the server uses a SQLite file next to the binary:

	ADMIN_PASSWORD=secret go run .

Or against PostgreSQL with flags:

	go run . -t postgres -d "postgres://..." -g groups.yaml --admin-password secret

A .env file in the working directory is loaded before flags are parsed.

# Configuration

Required settings:

  - ADMIN_PASSWORD (--admin-password) or ADMIN_PASSWORD_HASH: admin login
  - DATABASE_URL (-d): required for postgres, defaults to classvote.db for sqlite

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - GROUPS_FILE (-g): group catalog, .yaml or .json/.jsonc (default: groups.yaml)
  - SESSION_SECRET (--session-secret): cookie signing key, random if unset
  - SESSION_TTL (--session-ttl): session lifetime (default: 12h)
  - SECURE_COOKIES (--secure-cookies): mark cookies Secure

# Architecture

  - handlers: HTTP request handlers (students, voting, feedback, admin)
  - router: Route definitions using Go 1.22+ routing
  - middleware: session guards, CORS, logging, JSON helpers
  - voting: the per-student state machine
  - store: transactional persistence of students, votes, feedback and reports
  - catalog: the group catalog loaded from GROUPS_FILE
  - export: xlsx rendering of the admin report
  - models: domain, request and response types, validation and errors
  - auth: password hashing and signed session cookies
  - db: connection, schema and transaction helpers
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
