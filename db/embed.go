// Package db carries the database migration files, embedded so a deployed
// binary can migrate its own schema.
package db

import "embed"

//go:embed migrations
var Migrations embed.FS
