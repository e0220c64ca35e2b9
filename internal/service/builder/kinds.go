package builder

import (
	"fmt"
	"path/filepath"

	"github.com/okarpov/pack-forge/internal/config"
	"github.com/okarpov/pack-forge/internal/domain/pack"
)

// errNoBuilderForKind is returned when no concrete builder serves a kind.
var errNoBuilderForKind = fmt.Errorf("no builder registered for kind")

// base carries the collaborators every kind builder shares.
type base struct {
	// buildCtx is the immutable layout for this run.
	buildCtx *pack.BuildContext
	// cfg is the read-only project configuration.
	cfg *config.Config
	// icons is the resolved icon set, used for manifest icon references.
	icons *pack.IconSet
}

// NewKindBuilder returns the concrete builder for the context's kind.
// The set of kinds is closed; dispatch replaces subclassing.
func NewKindBuilder(buildCtx *pack.BuildContext, cfg *config.Config, icons *pack.IconSet) (KindBuilder, error) {
	shared := base{buildCtx: buildCtx, cfg: cfg, icons: icons}

	switch buildCtx.Kind {
	case pack.KindDeb:
		return &debBuilder{base: shared}, nil
	case pack.KindRpm:
		return &rpmBuilder{base: shared}, nil
	case pack.KindFlatpak:
		return &flatpakBuilder{base: shared}, nil
	case pack.KindAppImage:
		return &appImageBuilder{base: shared}, nil
	case pack.KindWinSetup:
		return &winSetupBuilder{base: shared}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errNoBuilderForKind, buildCtx.Kind)
	}
}

// installedBinPath is the path of the application launcher after install
// on FHS systems.
func (b *base) installedBinPath() string {
	return filepath.Join("/usr/bin", b.buildCtx.AppBaseName)
}
