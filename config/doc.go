// Package config loads relay settings from the environment.
//
// Settings come from process environment variables, with a .env file loaded
// by the entrypoint beforehand for local development. Every field has a
// default that yields a working local server, so a bare `relay serve` needs
// no configuration at all.
package config
