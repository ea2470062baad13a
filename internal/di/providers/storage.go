package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/inkpost/inkpost-server/internal/config"
	"github.com/inkpost/inkpost-server/internal/logger"
	"github.com/inkpost/inkpost-server/internal/media/images"
)

// ImageStorages groups all image storage services.
type ImageStorages struct {
	Sections *images.Storage
}

// ProvideImageStorages provides all image storage services.
func ProvideImageStorages(i do.Injector) (*ImageStorages, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	sections, err := images.NewStorage(cfg.Data.ImagesPath(), "sections")
	if err != nil {
		return nil, fmt.Errorf("section image storage: %w", err)
	}

	log.Info("Image storages initialized", "path", cfg.Data.ImagesPath())

	return &ImageStorages{Sections: sections}, nil
}
