// Package config handles configuration loading for jobtrack.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	sessions:
//	  cookie_secret: "${JOBTRACK_COOKIE_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  addr: "127.0.0.1:3000"
//	  production: false   # true forces Secure cookies
//
// Database:
//
//	database:
//	  path: "~/.local/share/jobtrack/jobtrack.db"
//
// Sessions:
//
//	sessions:
//	  cookie_secret: "${JOBTRACK_COOKIE_SECRET}"  # required, >= 32 bytes
//	  ttl: "168h"             # fixed lifetime from creation, not sliding
//	  sweep_interval: "1h"    # expired-row cleanup cadence
//
// CSRF protected set (method AND content type must match to be protected):
//
//	csrf:
//	  protected_methods: ["POST", "PUT", "PATCH", "DELETE"]
//	  protected_content_types:
//	    - "application/x-www-form-urlencoded"
//	    - "multipart/form-data"
//	    - "application/json"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - Cookie secret minimum length (32 bytes)
//   - Database path presence
//   - Session TTL sanity (>= 1m)
//   - Protected methods are state-changing methods
package config
