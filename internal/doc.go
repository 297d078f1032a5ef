// Package internal contains the implementation packages of the template
// builder.
//
// The build flows bottom-up: minify and manifest feed build, which the
// watcher and the packager drive, while errors, logging and config are
// shared by all of them.
package internal
