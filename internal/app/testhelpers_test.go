package app

import (
	"io"
	"os"
	"testing"

	"github.com/spf13/pflag"
)

func resetFlags(t *testing.T) {
	t.Helper()
	oldSet, oldArgs := pflag.CommandLine, os.Args
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	pflag.CommandLine = fs
	os.Args = []string{"cmd"}
	t.Cleanup(func() {
		pflag.CommandLine = oldSet
		os.Args = oldArgs
	})
}

// memoryEnv configures a self-contained service: in-memory storage, no Kafka, local rate limiting.
func memoryEnv(t *testing.T) {
	t.Helper()
	resetFlags(t)
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("RATE_LIMIT_BACKEND", "memory")
	t.Setenv("PORT", "18080")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("PPROF_ENABLED", "false")
}
