// Aviary CI
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/aviary/internal/dagger"
)

// Aviary is the main module for the aviary CI pipeline
type Aviary struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Aviary CI module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".aviary", "build", "tmp"]
	source *dagger.Directory,
) *Aviary {
	return &Aviary{
		Source: source,
	}
}

// goContainer returns a Go container with the project source mounted and
// module caches attached. aviary is pure Go, so CGO stays disabled.
func (a *Aviary) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-alpine").
		WithEnvVariable("CGO_ENABLED", "0").
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", a.Source)
}

// Test runs the aviary unit tests via "go test"
func (a *Aviary) Test(ctx context.Context) (string, error) {
	return a.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
