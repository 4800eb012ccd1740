package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/tabagent/internal/dagger"
)

// Build and return a directory of tabagent binaries for every platform in
// the build matrix.
func (t *Tabagent) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	goarches := []string{"amd64", "arm64"}

	outputs := dag.Directory()

	// go-sqlite3 needs cgo, so binaries are built natively per arch on
	// linux only.
	for _, goarch := range goarches {
		path := fmt.Sprintf("linux/%s/", goarch)

		build := t.goContainer().
			WithEnvVariable("GOOS", "linux").
			WithEnvVariable("GOARCH", goarch).
			WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/tabagent"})

		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (t *Tabagent) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	buildtime := time.Now().UTC().Format(time.RFC3339)

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/papercomputeco/tabagent/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/papercomputeco/tabagent/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/papercomputeco/tabagent/pkg/utils.Buildtime=%s'", buildtime),
	}

	return t.Build(ctx, strings.Join(ldflags, " "))
}
