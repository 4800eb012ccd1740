package main

import (
	"context"
	"errors"
	"fmt"

	"dagger/tabagent/internal/dagger"
)

// tidyScript snapshots go.mod and go.sum, tidies, and diffs against the
// snapshot. A non-empty diff fails the exec.
const tidyScript = `cp go.mod /tmp/go.mod && cp go.sum /tmp/go.sum &&
go mod tidy &&
diff -u /tmp/go.mod go.mod && diff -u /tmp/go.sum go.sum`

// CheckGoModTidy fails when "go mod tidy" would change go.mod or go.sum.
//
// +check
func (t *Tabagent) CheckGoModTidy(ctx context.Context) (string, error) {
	out, err := t.goContainer().
		WithExec([]string{"sh", "-c", tidyScript}).
		Stdout(ctx)
	if err == nil {
		return "go.mod and go.sum are tidy\n" + out, nil
	}

	var execErr *dagger.ExecError
	if errors.As(err, &execErr) {
		return "", fmt.Errorf("go.mod or go.sum are not tidy, run 'go mod tidy':\n\n%s", execErr.Stdout)
	}
	return "", fmt.Errorf("checking go.mod tidiness: %w", err)
}
