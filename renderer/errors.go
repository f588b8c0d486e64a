package renderer

import "errors"

var (
	ErrNotInitialized   = errors.New("renderer: not initialized")
	ErrSceneNotDefined  = errors.New("renderer: no scene defined")
	ErrCameraNotDefined = errors.New("renderer: no camera defined")
	ErrInvalidViewport  = errors.New("renderer: invalid viewport dimensions")
)
