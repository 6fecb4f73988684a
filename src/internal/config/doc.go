// Package config loads apimanctl tool settings.
//
// Settings say how to reach the management server and how to run; they are
// separate from the declaration document, which says what the server should
// contain. Values are layered, later layers winning:
//
//  1. built-in defaults (DefaultSettings)
//  2. the TOML settings file, if one is given
//  3. APIMAN_* environment variables
//  4. command-line flags (applied by the commands package)
//
// # Example Settings File
//
//	[server]
//	address = "https://apiman.example.com/apiman"
//	username = "admin"
//	password = "admin123"
//	version = "v12x"
//	timeout_seconds = 30
//	max_retries = 3
//
//	[apply]
//	workers = 4
//	properties_file = "values.properties"
//
//	[log]
//	verbose = false
package config
