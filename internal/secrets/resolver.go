package secrets

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lnmn249/faire-lightspeed-lite/internal/config"
	"github.com/lnmn249/faire-lightspeed-lite/pkg/errors"
)

// Credential names the engine resolves at startup and per submit
const (
	KeyBaseURL  = "LS_BASE_URL"
	KeyAPIKey   = "LS_API_KEY"
	KeyOutletID = "OUTLET_ID"
)

// Resolver supplies named credentials. Absence of a credential is a fatal
// configuration error, never a fallback.
type Resolver interface {
	Get(name string) (string, error)
}

// New returns the resolver matching the configuration: a mounted-directory
// resolver when SECRETS_DIR is set (managed-secret deployments mount one
// file per credential), otherwise plain environment lookup.
func New(cfg config.SecretsConfig, logger *zap.Logger) Resolver {
	if cfg.Dir != "" {
		logger.Info("Using directory secret resolver", zap.String("dir", cfg.Dir))
		return &DirResolver{dir: cfg.Dir}
	}
	return &EnvResolver{}
}

// EnvResolver resolves credentials from environment variables
type EnvResolver struct{}

func (r *EnvResolver) Get(name string) (string, error) {
	val := os.Getenv(name)
	if val == "" {
		return "", &errors.ErrMissingSecret{Name: name}
	}
	return val, nil
}

// DirResolver reads one file per credential from a mounted directory,
// falling back to the environment when the file is absent.
type DirResolver struct {
	dir string
}

func (r *DirResolver) Get(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, name))
	if err == nil {
		if val := strings.TrimSpace(string(data)); val != "" {
			return val, nil
		}
	}
	if val := os.Getenv(name); val != "" {
		return val, nil
	}
	return "", &errors.ErrMissingSecret{Name: name}
}
