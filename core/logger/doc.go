// Package logger is a standardized event logging framework for the shell.
//
// Events are written as newline delimited JSON objects, one LogEntry per line,
// each holding exactly one event. Entries are plain encoding/json structs, not
// protobuf messages encoded with protojson, so logs written by protobuf based
// recorders aren't wire compatible with this format.
package logger
