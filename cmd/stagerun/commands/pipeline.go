package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/client-go/util/homedir"

	"github.com/slok/stagerun/internal/app/validate"
	"github.com/slok/stagerun/internal/log"
	"github.com/slok/stagerun/internal/model"
	storageio "github.com/slok/stagerun/internal/storage/io"
)

// loadPipeline loads and validates the pipeline file, it returns the pipeline and the
// directory of the file, relative step directories are based on it.
func loadPipeline(ctx context.Context, path string, logger log.Logger) (*model.Pipeline, string, error) {
	absPath, err := filepath.Abs(expandHome(path))
	if err != nil {
		return nil, "", fmt.Errorf("could not resolve pipeline path: %w", err)
	}
	dir, file := filepath.Dir(absPath), filepath.Base(absPath)

	svc, err := validate.NewService(validate.ServiceConfig{
		Repository: storageio.NewPipelineYAMLRepository(os.DirFS(dir)),
		Logger:     logger,
	})
	if err != nil {
		return nil, "", fmt.Errorf("could not create service: %w", err)
	}

	p, err := svc.Run(ctx, validate.Request{Path: file})
	if err != nil {
		return nil, "", err
	}

	return p, dir, nil
}

func expandHome(path string) string {
	if path == "~" {
		return homedir.HomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homedir.HomeDir(), path[2:])
	}
	return path
}
