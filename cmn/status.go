/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package cmn

// Response status codes, HTTP-style.
const (
	StatusOK                  uint32 = 200
	StatusNotFound            uint32 = 404
	StatusUnprocessableEntity uint32 = 422
	StatusInternalError       uint32 = 500
)
