package app

import (
	"time"

	"github.com/google/uuid"

	"variant-packager/internal/adapters"
	"variant-packager/internal/policies"
	"variant-packager/internal/ports"
)

type Service struct {
	RecipeLoader   ports.RecipeLoaderPort
	Extractor      ports.ArchiveExtractorPort
	Runner         ports.StepRunnerPort
	Finalizer      ports.FinalizerPort
	Files          ports.FileListerPort
	Locker         ports.WorkspaceLockPort
	ManifestReader ports.ManifestReaderPort
	ManifestWriter func(dir string) ports.ManifestWriterPort
	SBOMWriter     ports.SBOMWriterPort
	RPMExec        adapters.CommandFunc
	Clock          func() time.Time
	NewBuildID     func() string
}

func NewService() Service {
	workspace := adapters.NewWorkspaceAdapter()
	return Service{
		RecipeLoader:   adapters.NewRecipeFileAdapter(),
		Extractor:      adapters.NewTarArchiveAdapter(),
		Runner:         adapters.NewCommandStepAdapter(nil),
		Finalizer:      adapters.NewFilesystemFinalizerAdapter(policies.NewPurgePolicy(nil)),
		Files:          workspace,
		Locker:         workspace,
		ManifestReader: adapters.NewManifestReaderAdapter(),
		ManifestWriter: func(dir string) ports.ManifestWriterPort {
			return adapters.NewManifestFileAdapter(dir)
		},
		SBOMWriter: adapters.NewSBOMWriterAdapter(),
		RPMExec:    adapters.NewRPMProbeAdapter("").Exec,
		Clock:      time.Now,
		NewBuildID: uuid.NewString,
	}
}
