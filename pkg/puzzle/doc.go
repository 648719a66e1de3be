// Package puzzle defines the board model shared by the jigsaw generator.
//
// # Overview
//
// A [Board] is a rectangle split into Rows × Cols cells. Each cell becomes
// one puzzle piece whose outline is a closed bezier path (see package geom).
// Interior edges, the ones shared by two neighbouring cells, carry a tab on
// one side and the matching notch on the other; perimeter edges stay
// straight.
//
// Generation runs strictly in one direction:
//
//  1. [Resolve] turns a [Config] into an immutable [Board]
//  2. package edge pre-computes one shared slot per interior edge
//  3. package piece builds every cell's outline from its four edges,
//     using package tab for the curve of each side
//  4. package offset optionally insets or outsets each outline
//  5. package transform optionally scatters pieces for placement
//
// The result is a row-major list of [PieceRecord] values.
//
// # Modes
//
// Three [Mode] values control the edge shapes:
//
//   - [ModeGrid]: no tabs, every piece is an axis-aligned rectangle
//   - [ModeTraditional]: checkerboard tab orientation, jittered shape
//   - [ModeRandom]: tab orientation and shape drawn at random per edge
//
// # Sizing
//
// Rows and columns can be given explicitly, or one of them can be inferred
// from the other using the board's aspect ratio, or both can be derived from
// a target piece count:
//
//	b, err := puzzle.Resolve(puzzle.Config{
//	    Width:  200,
//	    Height: 100,
//	    Rows:   5,
//	    Mode:   puzzle.ModeTraditional,
//	})
//	// b.Cols == 10
//
// Invalid dimensions fail with INVALID_GEOMETRY from package errors before
// any other stage runs.
//
// # Coordinates
//
// Coordinates follow SVG conventions (y grows downward). Cell (r, c) spans
// from [Board.Corner](r, c) to [Board.Corner](r+1, c+1).
package puzzle
