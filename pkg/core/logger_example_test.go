package core_test

import (
	"context"
	"os"

	"github.com/fluxorio/todolist/pkg/core"
)

func ExampleLogger_WithFields() {
	logger := core.NewLevelLogger(os.Stdout, false)

	ctx := core.WithRequestID(context.Background(), core.GenerateRequestID())
	logger.WithFields(map[string]interface{}{
		"request_id": core.GetRequestID(ctx),
		"route":      "/api/todos",
	}).Info("request received")

	// Debug lines are dropped unless the logger was built with debug set
	logger.Debug("not written")
}
