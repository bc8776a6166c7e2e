// Package version reports build metadata stamped in with -ldflags
package version

// BuildInfo holds version information about the binary
type BuildInfo struct {
	Service string `json:"service" example:"cmsradar-api"`
	Version string `json:"version" example:"v0.3.0"`
	Commit  string `json:"commit"  example:"4f1c2ab"`
	Date    string `json:"date"    example:"2026-10-01"`
}

// set via -ldflags "-X 'cmsradar/internal/core/version.version=v0.3.0'
// -X 'cmsradar/internal/core/version.commit=4f1c2ab' -X 'cmsradar/internal/core/version.date=2026-10-01'"
var (
	service = "cmsradar"
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the stamped build information
func Info() BuildInfo {
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// UserAgent is the product token the fetcher sends
func UserAgent() string {
	return "Mozilla/5.0 (compatible; cmsradar/" + version + ")"
}
