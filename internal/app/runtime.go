package app

import (
	"os"
	"strconv"
)

// TestModeEnv makes cmd/mnb and cmd/worker exit before touching PostgreSQL
// or Redis. Accepts any strconv.ParseBool value.
const TestModeEnv = "MNB_TEST_MODE"

// InTestMode reports whether TestModeEnv is set to a true value.
func InTestMode() bool {
	on, err := strconv.ParseBool(os.Getenv(TestModeEnv))
	return err == nil && on
}
