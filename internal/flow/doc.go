// Package flow provides the viewport virtualization engine.
//
// A Flow maps a scroll position to a live window of recycled rows: the
// minimal contiguous index range whose rows cover the viewport. Rows come
// from a Pool and are bound to indices as the window moves; rows leaving
// the window go back to the pool with their binding intact so that
// scrolling back can reuse them without rebinding.
//
// The engine is parameterized by a Source (row count, row length, fixed
// test) instead of subclassing, and extra rows such as pinned ones are
// composed in through an Overlay that runs after every layout pass.
//
// A Flow is single-threaded. Every mutator lays out synchronously; a
// mutation issued while a pass is running (for example from a layout
// listener) is coalesced into one follow-up pass.
package flow
