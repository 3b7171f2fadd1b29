// Package config holds runtime configuration for otvetgrab.
//
// Configuration comes from three layers, later layers overriding earlier:
//  1. Defaults from NewConfig
//  2. The optional .otvetgrab YAML file (current directory, then home)
//  3. CLI flags
//
// The Config struct is constructed once in cmd and passed explicitly to
// every component that needs it; there is no package-level state.
package config
