package env

import (
	"fmt"
	"net/http"

	"github.com/carlmjohnson/versioninfo"
)

const unset = "unset"

// Overridden at link time: -ldflags "-X github.com/bluesky-social/profiledir/pkg/env.Version=v1.2.3"
var Version = unset

// Release version if one was linked in, otherwise the VCS-derived short version.
func Short() string {
	if Version != unset {
		return Version
	}
	return versioninfo.Short()
}

func VersionHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "%s\n", Short()) // nolint:errcheck
}

func IsProd() bool {
	return Version != unset
}
