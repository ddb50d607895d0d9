// Package meta holds the application identity.
package meta

import version "github.com/hashicorp/go-version"

const AppName = "protoir"

var (
	Version = version.Must(version.NewSemver("0.3.1"))
)
