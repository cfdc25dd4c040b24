// Package cliconfig resolves the fixture's runtime settings from defaults
// and environment variables. Command-line flags are applied on top by the
// cli package, which records them with SourceFlag.
package cliconfig
