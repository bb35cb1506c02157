// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package catalog loads the votable groups and mirrors them into storage.

Groups come from a YAML or JSON file read at startup:

	- id: G1
	  name: Line follower
	  teacher: Ms. Lin
	  lab_number: "301"

	cat, err := catalog.LoadFile("groups.yaml")
	err = cat.Sync(ctx, conn)

Membership in the loaded catalog is the only validity check for new votes
and feedback. Sync never deletes rows, so groups dropped from the file still
resolve for historical records.
*/
package catalog
