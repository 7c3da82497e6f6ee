package ports

import (
	"context"

	"variant-packager/internal/types"
)

// ArchiveExtractorPort unpacks a source archive into destDir, dropping the
// archive's single top-level directory.
type ArchiveExtractorPort interface {
	Extract(ctx context.Context, archivePath string, destDir string) error
}

// StepRunnerPort runs one opaque external step. A non-zero exit is reported
// as a non-zero exit code together with a non-nil error.
type StepRunnerPort interface {
	Run(ctx context.Context, step Step) (StepResult, error)
}

type Step struct {
	Name string
	Args []string
	Dir  string
}

type StepResult struct {
	ExitCode int
	Output   []byte
}

// FinalizerPort mutates an installed tree in place: purge then dedup.
type FinalizerPort interface {
	Finalize(ctx context.Context, root string) (types.FinalizeReport, error)
}

// WorkspaceLockPort grants one pipeline exclusive use of a working tree for
// its whole lifetime.
type WorkspaceLockPort interface {
	Acquire(ctx context.Context, path string) (release func() error, err error)
}
