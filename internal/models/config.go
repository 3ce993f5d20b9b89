package models

import "time"

// DefaultAPIURL is the Endor Labs REST API root
const DefaultAPIURL = "https://api.endorlabs.com/v1"

// Config holds configuration for a search run
type Config struct {
	// Packages to look up
	Dependencies []DependencySpec

	// Manifest files whose pinned dependencies are added to Dependencies
	Manifests       []string
	IncludeIndirect bool // also take go.mod requirements marked // indirect

	// Credentials
	APIKey    string
	APISecret string
	Namespace string // root namespace the search starts from

	// API settings
	APIURL   string
	PageSize int
	Timeout  time.Duration
	Retries  int
	Traverse bool // single traversing query at the root instead of per-namespace queries

	// Output settings
	OutputDir string
	Verbose   bool

	// Token cache settings
	CacheTTL   time.Duration
	NoCache    bool
	ClearCache bool // remove cached tokens before the run
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		APIURL:    DefaultAPIURL,
		PageSize:  100,
		Timeout:   600 * time.Second,
		Retries:   3,
		OutputDir: ".",
		CacheTTL:  30 * time.Minute,
	}
}
