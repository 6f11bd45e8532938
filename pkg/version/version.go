// Package version provides version information for httpstat
package version

// Version is the current version of the httpstat tool
const Version = "0.1.0"

// GetVersion returns the current version of the tool
func GetVersion() string {
	return Version
}
