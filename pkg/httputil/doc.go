// Package httputil holds the JSON plumbing shared by the HTTP API.
//
// [WriteJSON] and [WriteError] write responses, [DecodeJSON] reads request
// bodies with a size limit, and [StatusFor] maps the codes from package
// errors to HTTP status codes:
//
//	INVALID_INPUT, INVALID_GEOMETRY, INVALID_MODE,
//	INVALID_FORMAT, INVALID_PATH        400 Bad Request
//	DEGENERATE_EDGE                     422 Unprocessable Entity
//	NOT_FOUND                           404 Not Found
//	TIMEOUT                             504 Gateway Timeout
//	CANCELED                            503 Service Unavailable
//	UNSUPPORTED                         501 Not Implemented
//	anything else                       500 Internal Server Error
//
// Error bodies have the shape
//
//	{"error": {"code": "DEGENERATE_EDGE", "message": "...", "row": 0, "col": 1}}
//
// where row and col are present only when the failure belongs to a piece.
package httputil
