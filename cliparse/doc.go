// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from command-line flags and
environment variables.

Flags take precedence over environment variables, which take precedence
over defaults. A .env file in the working directory is loaded into the
environment by main before parsing.

# Settings

	Flag               Env                  Default
	-p, --port         PORT                 3318
	-t, --type         DATABASE_TYPE        sqlite
	-d, --database     DATABASE_URL         classvote.db (sqlite only)
	-g, --groups       GROUPS_FILE          groups.yaml
	--session-ttl      SESSION_TTL          12h
	--secure-cookies   SECURE_COOKIES       false
	--session-secret   SESSION_SECRET       random per process
	--admin-password   ADMIN_PASSWORD       (required unless hash set)
	                   ADMIN_PASSWORD_HASH  bcrypt hash alternative

# Usage

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
*/
package cliparse
