package render

import "errors"

// ErrSurfaceClosed is returned by Load after Close.
var ErrSurfaceClosed = errors.New("render surface closed")
