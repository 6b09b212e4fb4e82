// Package secret resolves credentials referenced from configuration.
//
// Configuration values go through two steps:
//   - strict environment expansion, where a missing ${VAR} is an error
//   - secret references of the form secretref:<provider>:<ref>, either as
//     the whole value or inline
//
// Built-in providers read environment variables ("env") and files ("file").
// A DSN such as postgres://app:secretref:file:/run/secrets/db@db/app keeps
// the password out of the config file.
package secret
