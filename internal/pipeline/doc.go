// Package pipeline runs a crawl as a sequence of steps.
//
// The standard sequence is the outer crawl from the seed titles, the inner
// pass over the resulting node set, and then saving. Every step reads and
// updates a shared Run.
//
// Saving is registered with AddFinalStep so it runs after an interrupted
// or failed crawl as well: a crawl cancelled with Ctrl-C still leaves its
// partial network and pending queue on disk.
package pipeline
