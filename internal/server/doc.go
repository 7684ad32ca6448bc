// Package server exposes the HTTP upload API. Uploads become job
// directories under the job root in the exact layout the workflow scanner
// consumes: a description file, the image files, and an ordered manifest.
// The server never renders anything itself; publishing a directory is the
// whole handoff.
package server
