// Package global holds process-wide state initialized at startup.
package global

import (
	"github.com/callwise/flow-version-service/pkg/fileurl"
)

var (
	// ROOT is the executable directory.
	ROOT string
	Name string = "Flow Version Service"
)

func init() {
	ROOT = fileurl.GetExePath() + "/"
}
