package cmd

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/xerrors"

	"github.com/ethanolivertroy/dep-usage/internal/models"
	"github.com/ethanolivertroy/dep-usage/internal/parsers"
)

// envBindings maps config keys to the environment variables that feed them
var envBindings = map[string]string{
	"api-key":    "API_KEY",
	"api-secret": "API_SECRET",
	"namespace":  "ENDOR_NAMESPACE",
	"api-url":    "ENDOR_API_URL",
}

// loadConfig merges .env, the process environment and flags into a Config.
// Flags win over the environment. Dependency specs are parsed first so a
// malformed entry fails before credentials are even looked at.
func loadConfig(flags *pflag.FlagSet, fs afero.Fs) (*models.Config, error) {
	// A missing .env file is fine; the process environment may be enough.
	_ = godotenv.Load()

	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return nil, xerrors.Errorf("failed to bind flags: %w", err)
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, xerrors.Errorf("failed to bind %s: %w", env, err)
		}
	}

	config := models.DefaultConfig()

	specs, err := models.ParseDependencyList(v.GetString("dependencies"))
	if err != nil {
		return nil, err
	}
	config.Manifests = v.GetStringSlice("manifest")
	config.IncludeIndirect = v.GetBool("include-indirect")
	if len(config.Manifests) > 0 {
		fromManifests, err := parsers.ExpandManifests(fs, config.Manifests, config.IncludeIndirect)
		if err != nil {
			return nil, err
		}
		specs = append(specs, fromManifests...)
	}
	if len(specs) == 0 {
		return nil, xerrors.New("no dependencies provided: use --dependencies or --manifest")
	}
	// The same spec given twice would be searched, and reported, twice
	config.Dependencies = lo.Uniq(specs)

	config.APIKey = strings.TrimSpace(v.GetString("api-key"))
	config.APISecret = strings.TrimSpace(v.GetString("api-secret"))
	config.Namespace = strings.TrimSpace(v.GetString("namespace"))
	if config.APIKey == "" || config.APISecret == "" || config.Namespace == "" {
		return nil, xerrors.New("API_KEY, API_SECRET, and ENDOR_NAMESPACE must be set in a .env file or in the environment")
	}

	if apiURL := strings.TrimSpace(v.GetString("api-url")); apiURL != "" {
		config.APIURL = apiURL
	}
	config.OutputDir = v.GetString("output-dir")
	config.PageSize = v.GetInt("page-size")
	config.Timeout = time.Duration(v.GetInt("timeout")) * time.Second
	config.Retries = v.GetInt("retries")
	config.Traverse = v.GetBool("traverse")
	config.NoCache = v.GetBool("no-cache")
	config.ClearCache = v.GetBool("clear-cache")
	config.Verbose = v.GetBool("verbose")

	if config.PageSize <= 0 {
		return nil, xerrors.Errorf("--page-size must be positive, got %d", config.PageSize)
	}
	if config.Retries < 0 {
		return nil, xerrors.Errorf("--retries must not be negative, got %d", config.Retries)
	}

	return config, nil
}
