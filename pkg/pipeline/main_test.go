package pipeline

import (
	"os"
	"testing"

	"github.com/vidscribe-ai/platform/pkg/common/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}
