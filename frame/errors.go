/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package frame

import "errors"

// ErrFrameTooLarge is returned by EncodeFrame when the serialised (and, if
// applicable, compressed) body exceeds MaxPayloadLen, and by ReadFrame
// when a header declares a length beyond what the 31-bit field can mean.
var ErrFrameTooLarge = errors.New("frame: payload too large")
