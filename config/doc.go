// Package config loads the healthops YAML configuration.
//
// Loading runs in a fixed order. Optional .env files are loaded into the
// process environment first, without overriding variables already set.
// Every string scalar in the YAML document then goes through the secret
// resolver, so values may use ${VAR} and secretref:<provider>:<ref>. The
// decoded config receives HEALTHOPS_* environment overrides and defaults,
// and is validated last.
package config
