package tracking

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	SetLogger(nil)
	goleak.VerifyTestMain(m)
}
