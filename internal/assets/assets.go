package assets

import (
	"embed"
)

// Database migrations
//
//go:embed migrations
var Migrations embed.FS

// Consent page templates
//
//go:embed templates
var Templates embed.FS
