// Package export writes recovered wheel archives into the destination
// directory. Writes go through a temp file + rename in the same directory so
// that an interrupted run leaves at most one stray temp file and never a
// half-written wheel under its final name. Each written entry reports its size
// and sha256 digest so the scan layer can log what landed on disk.
package export
