package database

import "embed"

// Migrations embeds the goose migration set for the route-audit schema.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the goose directory argument matching Migrations.
const MigrationsDir = "migrations"
