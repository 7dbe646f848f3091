// Package commands provides the command-line interface for the pwcrypt tool.
//
// It implements commands for:
//   - encryption and decryption of files
//   - pattern checking
//   - password hashing and verification
//   - key generation
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper.
package commands
