// Package guard switches the binaries into test mode when imported by a test.
package guard

import (
	"os"
	"sync"
)

// EnvVar is the variable the binaries check before starting servers.
const EnvVar = "LAUNDRY_TEST_MODE"

var once sync.Once

func init() {
	Enable()
}

// Enable sets EnvVar unless the caller already chose a value.
func Enable() {
	once.Do(func() {
		if os.Getenv(EnvVar) == "" {
			_ = os.Setenv(EnvVar, "1")
		}
	})
}
