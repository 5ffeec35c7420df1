// Package configs embeds the configuration template written by
// `goldenretriever config init`.
//
// The template mirrors the defaults of internal/config NewConfig() and
// documents every option inline. Edit config.example.yaml and rebuild to
// change it.
package configs

import _ "embed"

// ConfigTemplate is the commented configuration written to new user and
// project config files.
//
//go:embed config.example.yaml
var ConfigTemplate string
