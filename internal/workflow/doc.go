// Package workflow drives the reel pipeline: it polls the job root,
// filters out work the ledger already records, and runs each remaining job
// through synthesis and assembly before recording completion. One job is
// processed at a time; a failing job never stops the loop, it is retried on
// a later scan once its inputs change.
package workflow
