// Package daemon ties the workflow manager and the upload API into one
// single-instance background process. A file lock enforces that only one
// daemon touches a given job root at a time.
package daemon
