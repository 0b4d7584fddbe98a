package db

import _ "embed"

// Schema is the links table DDL, applied by tests and fresh deployments.
//
//go:embed migrations/001_create_links.sql
var Schema string
