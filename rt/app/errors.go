package app

import "fmt"

type Stage string

const (
	StageConfig     Stage = "config"
	StageDefinition Stage = "definition"
	StageWindow     Stage = "window"
	StageGpu        Stage = "gpu"
	StageShader     Stage = "shader"
	StageGeometry   Stage = "geometry"
	StageTexture    Stage = "texture"
	StageScene      Stage = "scene"
)

// StartupError is a fatal failure during Init. Nothing is drawn after one.
type StartupError struct {
	Stage Stage
	Err   error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup failed at %s: %v", e.Stage, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

func fail(stage Stage, err error) error {
	return &StartupError{Stage: stage, Err: err}
}
