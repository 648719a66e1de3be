// Package io reads and writes puzzle documents as JSON.
//
// # Overview
//
// A generation run produces a [puzzle.Document]: the resolved board, the seed
// that drove it, the interior edge table and one outline per piece. This
// package persists that document so it can be re-rendered later without
// regenerating, for example:
//
//	jigsaw generate --seed 7 -f json -o puzzle.json
//	jigsaw render puzzle.json -f svg -o puzzle.svg
//
// # JSON Format
//
//	{
//	  "version": 1,
//	  "origin": {"x": 0, "y": 0},
//	  "width": 300, "height": 200,
//	  "rows": 2, "cols": 3,
//	  "mode": "traditional",
//	  "seed": 7,
//	  "edges": [
//	    {"axis": "vertical", "owner": {"row": 0, "col": 0},
//	     "other": {"row": 0, "col": 1}, "tab_sign": 1, "depth_jitter": 0.012}
//	  ],
//	  "pieces": [
//	    {"row": 0, "col": 0, "boundary": {"nodes": [...], "closed": true}}
//	  ]
//	}
//
// Each boundary node carries its anchor, both bezier handles and a kind
// ("corner" or "smooth"). Optional per-piece fields are offset_boundary and
// placement_delta.
//
// # Validation
//
// [ReadJSON] rejects documents that could not have come out of the
// generator: unknown versions, non-positive dimensions, unknown modes, piece
// cells outside the board or repeated, and boundaries that do not close.
// Failures carry the INVALID_FORMAT code from package errors and, where a
// single piece is at fault, its cell.
package io
