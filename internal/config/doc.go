// Package config loads the solvent YAML configuration.
//
// Values may reference environment variables as ${VAR}; .env and .env.local
// in the working directory are loaded first without overriding variables
// already set. Defaults are applied after decoding and the result is
// validated before it is returned.
package config
