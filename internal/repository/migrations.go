package repository

import "embed"

// Migrations holds the dispatch log schema, named NNN_name.up.sql / NNN_name.down.sql
//
//go:embed migrations/*.sql
var Migrations embed.FS
