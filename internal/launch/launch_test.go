package launch

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"jp2mi/internal/errors"
	"jp2mi/internal/invocation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess stands in for a codec when run as a child process
func TestHelperProcess(t *testing.T) {
	if os.Getenv("JP2MI_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) > 1 {
		args = args[1:]
	}
	switch args[0] {
	case "sleep":
		d, _ := time.ParseDuration(args[1])
		time.Sleep(d)
	case "fail":
		os.Exit(3)
	}
	os.Exit(0)
}

func helperRunner() *Runner {
	r := NewRunner()
	r.command = func(name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--"}, args...)
		cmd := exec.Command(os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "JP2MI_HELPER_PROCESS=1")
		return cmd
	}
	return r
}

func helperCommand(args ...string) invocation.CommandLine {
	return invocation.CommandLine{Executable: os.Args[0], Args: args}
}

func TestLaunchReportsExit(t *testing.T) {
	r := helperRunner()

	var mu sync.Mutex
	var results []Result
	r.OnExit = func(res Result) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, res)
	}

	require.NoError(t, r.Launch(helperCommand("ok")))
	r.Wait()
	require.NoError(t, r.Launch(helperCommand("fail")))
	r.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Equal(t, []string{"fail"}, results[1].Command.Args)
	assert.False(t, r.Busy())
}

func TestLaunchBusyGuard(t *testing.T) {
	r := helperRunner()

	require.NoError(t, r.Launch(helperCommand("sleep", "500ms")))
	assert.True(t, r.Busy())

	err := r.Launch(helperCommand("ok"))
	require.Error(t, err)
	assert.True(t, errors.IsLaunchBusy(err))

	r.Wait()
	assert.False(t, r.Busy())
	require.NoError(t, r.Launch(helperCommand("ok")))
	r.Wait()
}

func TestLaunchMissingExecutable(t *testing.T) {
	r := helperRunner()
	exe := filepath.Join(t.TempDir(), "JPEG2000_MI_Encoding")

	err := r.Launch(invocation.CommandLine{Executable: exe, Args: []string{"-i", "a.bmp"}})
	require.Error(t, err)

	var launchErr *errors.LaunchError
	require.True(t, errors.As(err, &launchErr))
	assert.Equal(t, exe, launchErr.Executable())
	assert.Equal(t, errors.FileNotFound, launchErr.Kind())
	assert.False(t, r.Busy(), "failed launch releases the guard")
}

func TestViewerOpen(t *testing.T) {
	var opened []string
	v := NewViewer(func(path string) error {
		opened = append(opened, path)
		return nil
	})

	dir := t.TempDir()
	existing := filepath.Join(dir, "out.jp2")
	require.NoError(t, os.WriteFile(existing, []byte("jp2"), 0644))

	assert.NoError(t, v.Open(""))
	assert.NoError(t, v.Open(filepath.Join(dir, "missing.jp2")))
	assert.Empty(t, opened, "missing files are never handed to the viewer")

	require.NoError(t, v.Open(existing))
	assert.Equal(t, []string{existing}, opened)
}

func TestViewerOpenFailure(t *testing.T) {
	v := NewViewer(func(string) error { return fmt.Errorf("no viewer") })
	path := filepath.Join(t.TempDir(), "x.bmp")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	err := v.Open(path)
	require.Error(t, err)
	assert.Equal(t, errors.LaunchFailed, errors.KindOf(err))
	assert.Contains(t, err.Error(), "no viewer")
}
