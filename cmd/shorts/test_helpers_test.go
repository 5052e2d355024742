package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shorts/internal/config"
	"shorts/internal/daemon"
	"shorts/internal/ipc"
	"shorts/internal/logging"
	"shorts/internal/queue"
	"shorts/internal/testsupport"
	"shorts/internal/workflow"
)

const fetchScript = `out=""
prev=""
for arg; do
  if [ "$prev" = "-o" ]; then out="$arg"; fi
  prev="$arg"
done
dir=$(dirname "$out")
printf 'source' > "$dir/clip.mp4"
printf '{"id":"clip","ext":"mp4","duration":90,"width":1920,"height":1080,"requested_downloads":[{"filepath":"%s/clip.mp4"}]}' "$dir"`

// ffmpegScript writes a placeholder to its output path for both encodes and
// frame captures.
const ffmpegScript = `for last; do :; done
printf 'short' > "$last"`

type cliTestEnv struct {
	cfg        *config.Config
	store      *queue.Store
	daemon     *daemon.Daemon
	runner     *workflow.Runner
	server     *ipc.Server
	socketPath string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t,
		testsupport.WithScript("yt-dlp", fetchScript),
		testsupport.WithScript("ffmpeg", ffmpegScript),
		testsupport.WithScript("ffprobe", "exit 1"),
	)
	cfg.Metrics.Enabled = false

	configPath := filepath.Join(testsupport.BaseDir(cfg), "shorts.toml")
	writeTestConfig(t, configPath, cfg)

	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	ctx, cancel := context.WithCancel(context.Background())
	runner, err := workflow.NewFromConfig(ctx, cfg, store, nil, logger)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	d, err := daemon.New(cfg, store, runner, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	socketPath := cfg.SocketPath()
	srv, err := ipc.NewServer(ctx, socketPath, d, logger)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	t.Cleanup(func() {
		srv.Close()
		_ = d.Shutdown(context.Background())
		cancel()
	})

	return &cliTestEnv{
		cfg:        cfg,
		store:      store,
		daemon:     d,
		runner:     runner,
		server:     srv,
		socketPath: socketPath,
		configPath: configPath,
	}
}

func (e *cliTestEnv) waitJobs(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.runner.Wait(ctx); err != nil {
		t.Fatalf("runner.Wait: %v", err)
	}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if socket != "" {
		flags = append(flags, "--socket", socket)
	}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
state_dir = %q
scratch_dir = %q
artifact_dir = %q
log_dir = %q

[reachability]
enabled = false

[metrics]
enabled = false
`,
		cfg.Paths.StateDir,
		cfg.Paths.ScratchDir,
		cfg.Paths.ArtifactDir,
		cfg.Paths.LogDir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
