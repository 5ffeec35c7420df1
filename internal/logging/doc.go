// Package logging configures slog for goldenretriever.
//
// By default logs are plain text on stderr at warn level so that retrieval
// results on stdout stay clean. With --debug, JSON logs at debug level are
// written to a rotating file under ~/.goldenretriever/logs/ and can be read
// back with the `goldenretriever logs` command.
package logging
