//go:build unix

package tadapt

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bodyStarted = "body started"

// TestHelperProcess is not a real test. It is re-executed by the tests
// below as an adapter binary whose only test never returns.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("TADAPT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) > 0 {
		args = args[1:]
	}

	reg := NewRegistry()
	reg.Add("HangTests", "Forever", func(t *T) {
		fmt.Fprintln(os.Stdout, bodyStarted)
		for {
			time.Sleep(time.Hour)
		}
	})
	os.Exit(Main(reg, args))
}

func TestMain_SecondSignalTerminatesStuckBody(t *testing.T) {
	cmd := exec.Command(os.Args[0], "-test.run=^TestHelperProcess$", "--", "--quiet")
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(), "TADAPT_HELPER_PROCESS=1")
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())

	line, err := bufio.NewReader(stdout).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, bodyStarted+"\n", line)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	deadline := time.After(10 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case err := <-done:
			var exitErr *exec.ExitError
			require.True(t, errors.As(err, &exitErr), "expected the adapter to be killed, got %v", err)
			status, ok := exitErr.Sys().(syscall.WaitStatus)
			require.True(t, ok)
			assert.True(t, status.Signaled())
			assert.Equal(t, syscall.SIGTERM, status.Signal())
			return
		case <-ticker.C:
			_ = cmd.Process.Signal(syscall.SIGTERM)
		case <-deadline:
			_ = cmd.Process.Kill()
			t.Fatal("adapter ignored repeated SIGTERM while a test body was running")
		}
	}
}
