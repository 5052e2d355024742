package preflight

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shorts/internal/config"
	"shorts/internal/services"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

type fakeDialer struct {
	err      error
	address  string
	deadline bool
}

func (f *fakeDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	f.address = address
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	client, server := net.Pipe()
	server.Close()
	return client, nil
}

func TestReachabilitySuccess(t *testing.T) {
	dialer := &fakeDialer{}
	probe := &Reachability{Enabled: true, Address: "www.youtube.com:443", Timeout: time.Second, Dialer: dialer}
	if err := probe.Check(context.Background()); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if dialer.address != "www.youtube.com:443" || !dialer.deadline {
		t.Fatalf("unexpected dial: %s deadline=%v", dialer.address, dialer.deadline)
	}
}

func TestReachabilityFailure(t *testing.T) {
	probe := &Reachability{Enabled: true, Address: "www.youtube.com:443", Dialer: &fakeDialer{err: errors.New("no route to host")}}
	err := probe.Check(context.Background())
	if !errors.Is(err, services.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if got := services.UserMessage(err); got != "Unable to reach YouTube. Check your internet connection and try again." {
		t.Fatalf("unexpected message %q", got)
	}
	if result := probe.Result(context.Background()); result.Passed {
		t.Fatal("expected failed result")
	}
}

func TestReachabilityDisabledSkipsDial(t *testing.T) {
	dialer := &fakeDialer{err: errors.New("should not dial")}
	probe := &Reachability{Enabled: false, Dialer: dialer}
	if err := probe.Check(context.Background()); err != nil {
		t.Fatalf("expected disabled probe to pass, got %v", err)
	}
	if dialer.address != "" {
		t.Fatal("expected no dial")
	}
}

func TestNewReachabilityUsesConfig(t *testing.T) {
	cfg := config.Default()
	probe := NewReachability(&cfg)
	if probe.Address != "www.youtube.com:443" || probe.Timeout != 5*time.Second || !probe.Enabled {
		t.Fatalf("unexpected probe: %+v", probe)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	binDir := t.TempDir()
	for _, name := range []string{"yt-dlp", "ffmpeg"} {
		if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			t.Fatalf("write stub: %v", err)
		}
	}
	t.Setenv("PATH", binDir)
	cfg := config.Default()

	statuses := CheckSystemDeps(&cfg)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if !statuses[0].Available || !statuses[1].Available {
		t.Fatalf("expected yt-dlp and ffmpeg available: %#v", statuses)
	}
	if statuses[2].Available || !statuses[2].Optional {
		t.Fatalf("expected optional missing ffprobe: %#v", statuses[2])
	}
}

func TestRunAllChecksDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfg.Paths.StateDir = base
	cfg.Paths.ArtifactDir = base
	cfg.Reachability.Enabled = false

	results := RunAll(context.Background(), &cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Passed {
		t.Fatal("expected missing scratch dir to fail")
	}
	if !results[1].Passed || !results[2].Passed {
		t.Fatalf("expected existing dirs to pass: %#v", results)
	}
}
