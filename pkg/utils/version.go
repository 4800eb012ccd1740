// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

import "fmt"

// Set at release time via -ldflags "-X".
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// VersionInfo is the multi-line build description printed by
// "tabagent version".
func VersionInfo() string {
	return fmt.Sprintf("tabagent %s\nSha: %s\nBuilt at: %s\n", Version, Sha, Buildtime)
}
