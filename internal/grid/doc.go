// Package grid provides the data model behind a spreadsheet view.
//
// A Grid is an ordered sequence of rows, each holding one reference per
// column. References resolve through an id table to the Cell that anchors
// them, so every position covered by a span shares the anchor's Cell:
//
//	g := grid.New(10, 4)
//	anchor := g.SetSpan(3, 2, 4, 1)
//	g.CellAt(6, 2) == anchor // true
//
// Structural mutations (row/column insert and remove, bulk replace) and
// content mutations (values, spans, geometry) are published as Change
// values so dependents can adjust incrementally instead of diffing.
//
// Overlapping spans are tolerated: the most recent SetSpan call owns every
// position it covers, and positions covered only by an earlier span keep
// their earlier anchor.
package grid
