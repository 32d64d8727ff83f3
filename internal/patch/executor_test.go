package patch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fjelltone/themepatch/internal/backup"
	"github.com/fjelltone/themepatch/internal/elevate"
	"github.com/fjelltone/themepatch/patcherr"
)

// fakePlatform drives the executor through writable and elevated paths
// without touching pkexec or UAC. Scripts are real bash scripts so their
// rendered bodies can be asserted on.
type fakePlatform struct {
	writable    func(path string) bool
	mechanism   bool
	runElevated func(ctx context.Context, script elevate.Script) (elevate.Result, error)

	elevatedBodies []string
}

func (p *fakePlatform) CanWrite(path string) bool {
	if p.writable == nil {
		return true
	}
	return p.writable(path)
}

func (p *fakePlatform) HasMechanism() bool    { return p.mechanism }
func (p *fakePlatform) MechanismName() string { return "fake" }

func (p *fakePlatform) NewScript() elevate.Script {
	return elevate.NewPosixPlatform("", nil).NewScript()
}

func (p *fakePlatform) RunElevated(ctx context.Context, script elevate.Script) (elevate.Result, error) {
	p.elevatedBodies = append(p.elevatedBodies, script.Body())
	if p.runElevated == nil {
		return elevate.Result{}, nil
	}
	return p.runElevated(ctx, script)
}

type fakeFinder struct {
	path  string
	err   error
	calls int
}

func (f *fakeFinder) Find(ctx context.Context) (string, error) {
	f.calls++
	return f.path, f.err
}

type fakeAcquirer struct {
	path  string
	err   error
	calls int
}

func (a *fakeAcquirer) EnsureAvailable(ctx context.Context) (string, error) {
	a.calls++
	return a.path, a.err
}

type toolCall struct {
	javaPath string
	jarPath  string
}

type testHarness struct {
	exec     *Executor
	platform *fakePlatform
	finder   *fakeFinder
	acquirer *fakeAcquirer
	target   string

	toolCalls  []toolCall
	toolStdout string
	toolErr    error
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	h := &testHarness{
		platform: &fakePlatform{mechanism: true},
		finder:   &fakeFinder{path: "/usr/bin/java"},
		acquirer: &fakeAcquirer{path: "/cache/patcher/tool.jar"},
	}
	h.target = filepath.Join(t.TempDir(), "bitwig.jar")
	if err := os.WriteFile(h.target, []byte("original jar"), 0o644); err != nil {
		t.Fatalf("write target: %v", err)
	}

	store := backup.NewStore(t.TempDir(), backup.RealSystem{})
	id := elevate.Identity{Home: "/home/alice", User: "alice", Login: "alice"}
	h.exec = NewExecutor(store, h.platform, h.finder, h.acquirer, id, filepath.Join(t.TempDir(), "stage"), nil)
	h.exec.runTool = func(ctx context.Context, javaPath string, toolPath string, jarPath string, id elevate.Identity) (string, string, error) {
		h.toolCalls = append(h.toolCalls, toolCall{javaPath: javaPath, jarPath: jarPath})
		if h.toolErr != nil {
			return "", "", h.toolErr
		}
		// Patch in place the way the real tool does.
		if err := os.WriteFile(jarPath, []byte("patched jar"), 0o644); err != nil {
			return "", "", err
		}
		return h.toolStdout, "", nil
	}
	return h
}

func TestPatch_DirectWhenWritable(t *testing.T) {
	h := newHarness(t)

	if err := h.exec.Patch(context.Background(), h.target); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if len(h.toolCalls) != 1 || h.toolCalls[0].jarPath != h.target {
		t.Fatalf("expected one tool run against target, got %v", h.toolCalls)
	}
	if !IsPatched(h.target) {
		t.Fatalf("expected marker after direct patch")
	}
	if len(h.platform.elevatedBodies) != 0 {
		t.Fatalf("direct patch must not elevate")
	}
	// The pristine simple backup sits next to the jar.
	data, err := os.ReadFile(backup.SimplePath(h.target))
	if err != nil {
		t.Fatalf("read simple backup: %v", err)
	}
	if string(data) != "original jar" {
		t.Fatalf("simple backup holds %q", data)
	}
}

func TestPatch_NamespacedBackupBeforeTool(t *testing.T) {
	h := newHarness(t)
	if err := h.exec.Patch(context.Background(), h.target); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	rec, err := h.exec.Backups.FindLatest(h.target)
	if err != nil {
		t.Fatalf("FindLatest: %v", err)
	}
	data, err := os.ReadFile(rec.BackupPath)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(data) != "original jar" {
		t.Fatalf("namespaced backup taken after patching: %q", data)
	}
}

func TestPatch_MissingTarget(t *testing.T) {
	h := newHarness(t)
	err := h.exec.Patch(context.Background(), filepath.Join(t.TempDir(), "absent.jar"))
	if !errors.Is(err, patcherr.ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
	if len(h.toolCalls) != 0 {
		t.Fatalf("no subprocess should run for a missing target")
	}
}

func TestPatch_AlreadyPatchedMarkerShortCircuits(t *testing.T) {
	h := newHarness(t)
	if err := os.WriteFile(MarkerPath(h.target), []byte("patched"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	err := h.exec.Patch(context.Background(), h.target)
	if !errors.Is(err, patcherr.ErrAlreadyPatched) {
		t.Fatalf("expected ErrAlreadyPatched, got %v", err)
	}
	if h.finder.calls != 0 || h.acquirer.calls != 0 || len(h.toolCalls) != 0 {
		t.Fatalf("idempotence check must precede any discovery or subprocess")
	}
}

func TestPatch_ToolReportsAlreadyPatched(t *testing.T) {
	h := newHarness(t)
	h.toolStdout = "The jar is already patched, nothing to do"

	if err := h.exec.Patch(context.Background(), h.target); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if IsPatched(h.target) {
		t.Fatalf("tool output is authoritative: no marker when it reports already patched")
	}
}

func TestPatch_StagedWhenUnwritable(t *testing.T) {
	h := newHarness(t)
	h.platform.writable = func(string) bool { return false }

	if err := h.exec.Patch(context.Background(), h.target); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if len(h.toolCalls) != 1 {
		t.Fatalf("expected one tool run, got %d", len(h.toolCalls))
	}
	if h.toolCalls[0].jarPath == h.target {
		t.Fatalf("tool must run against the staged copy, not the target")
	}
	if !strings.HasPrefix(filepath.Base(h.toolCalls[0].jarPath), "stage-") {
		t.Fatalf("unexpected stage path %q", h.toolCalls[0].jarPath)
	}
	if len(h.platform.elevatedBodies) != 1 {
		t.Fatalf("expected one elevated run, got %d", len(h.platform.elevatedBodies))
	}
	body := h.platform.elevatedBodies[0]
	if !strings.Contains(body, "cp ") || !strings.Contains(body, h.target) {
		t.Fatalf("elevated script must copy the stage back: %q", body)
	}
	if !strings.Contains(body, MarkerPath(h.target)) {
		t.Fatalf("elevated script must write the marker: %q", body)
	}
	if _, err := os.Stat(h.toolCalls[0].jarPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("staging file not cleaned up, stat err: %v", err)
	}
}

func TestPatch_StagedWithoutMechanism(t *testing.T) {
	h := newHarness(t)
	h.platform.writable = func(string) bool { return false }
	h.platform.mechanism = false

	err := h.exec.Patch(context.Background(), h.target)
	if !errors.Is(err, patcherr.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if len(h.toolCalls) != 0 {
		t.Fatalf("no staging without an elevation mechanism")
	}
}

func TestPatch_StagedCancellationLeavesNoMarker(t *testing.T) {
	h := newHarness(t)
	h.platform.writable = func(string) bool { return false }
	h.platform.runElevated = func(ctx context.Context, script elevate.Script) (elevate.Result, error) {
		return elevate.Result{}, patcherr.ErrElevationCancelled
	}

	err := h.exec.Patch(context.Background(), h.target)
	if !errors.Is(err, patcherr.ErrElevationCancelled) {
		t.Fatalf("expected ErrElevationCancelled, got %v", err)
	}
	if IsPatched(h.target) {
		t.Fatalf("cancelled elevation must leave no marker")
	}
	data, err := os.ReadFile(h.target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if string(data) != "original jar" {
		t.Fatalf("cancelled elevation must leave the target unchanged: %q", data)
	}
}

func TestPatch_StagedPrefersStaleBackupBytes(t *testing.T) {
	h := newHarness(t)
	h.platform.writable = func(string) bool { return false }
	stale := strings.TrimSuffix(h.target, ".jar") + ".jar.backup"
	if err := os.WriteFile(stale, []byte("pristine from old install"), 0o644); err != nil {
		t.Fatalf("write stale backup: %v", err)
	}

	var stagedContent string
	inner := h.exec.runTool
	h.exec.runTool = func(ctx context.Context, javaPath string, toolPath string, jarPath string, id elevate.Identity) (string, string, error) {
		data, err := os.ReadFile(jarPath)
		if err != nil {
			t.Fatalf("read stage: %v", err)
		}
		stagedContent = string(data)
		return inner(ctx, javaPath, toolPath, jarPath, id)
	}

	if err := h.exec.Patch(context.Background(), h.target); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if stagedContent != "pristine from old install" {
		t.Fatalf("expected stale backup staged first, got %q", stagedContent)
	}
}

func TestPatch_StagedFallsThroughAlreadyPatchedSources(t *testing.T) {
	h := newHarness(t)
	h.platform.writable = func(string) bool { return false }
	stale := strings.TrimSuffix(h.target, ".jar") + ".jar.backup"
	if err := os.WriteFile(stale, []byte("already patched bytes"), 0o644); err != nil {
		t.Fatalf("write stale backup: %v", err)
	}

	// The stale backup reports already patched; the live target does not.
	h.exec.runTool = func(ctx context.Context, javaPath string, toolPath string, jarPath string, id elevate.Identity) (string, string, error) {
		data, err := os.ReadFile(jarPath)
		if err != nil {
			return "", "", err
		}
		if strings.Contains(string(data), "already patched") {
			return "target is already patched", "", nil
		}
		return "", "", os.WriteFile(jarPath, []byte("patched jar"), 0o644)
	}

	if err := h.exec.Patch(context.Background(), h.target); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if len(h.platform.elevatedBodies) != 1 {
		t.Fatalf("expected the second source to elevate, got %d runs", len(h.platform.elevatedBodies))
	}
}

func TestPatch_StagedAllSourcesAlreadyPatched(t *testing.T) {
	h := newHarness(t)
	h.platform.writable = func(string) bool { return false }
	h.toolStdout = "already patched"

	err := h.exec.Patch(context.Background(), h.target)
	if !errors.Is(err, patcherr.ErrAlreadyPatched) {
		t.Fatalf("expected ErrAlreadyPatched after exhausting sources, got %v", err)
	}
	if len(h.platform.elevatedBodies) != 0 {
		t.Fatalf("nothing to copy back when every source is patched")
	}
}

func TestPatch_BackupRequiredAborts(t *testing.T) {
	h := newHarness(t)
	h.exec.Policy = BackupRequired
	// A regular file where the cache root should be makes every store
	// write fail.
	blocked := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocked, []byte("file"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	h.exec.Backups = backup.NewStore(filepath.Join(blocked, "cache"), backup.RealSystem{})

	if err := h.exec.Patch(context.Background(), h.target); err == nil {
		t.Fatalf("expected abort when required backup fails")
	}
	if len(h.toolCalls) != 0 {
		t.Fatalf("tool must not run without the required backup")
	}
}

func TestPatch_BestEffortBackupFailureLogsAndProceeds(t *testing.T) {
	h := newHarness(t)
	var log strings.Builder
	h.exec.LogOutput = &log
	blocked := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocked, []byte("file"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	h.exec.Backups = backup.NewStore(filepath.Join(blocked, "cache"), backup.RealSystem{})

	if err := h.exec.Patch(context.Background(), h.target); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if len(h.toolCalls) != 1 {
		t.Fatalf("patch should proceed under best effort")
	}
	if !strings.Contains(log.String(), "backup") {
		t.Fatalf("failed backup must be logged, log: %q", log.String())
	}
}

func TestPatch_ToolFailurePropagates(t *testing.T) {
	h := newHarness(t)
	h.toolErr = &patcherr.ToolExecutionError{Stdout: "out", Stderr: "java.lang.Boom"}

	err := h.exec.Patch(context.Background(), h.target)
	var toolErr *patcherr.ToolExecutionError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolExecutionError, got %v", err)
	}
	if toolErr.Stderr != "java.lang.Boom" {
		t.Fatalf("expected tool output preserved, got %+v", toolErr)
	}
	if IsPatched(h.target) {
		t.Fatalf("no marker on tool failure")
	}
}

func TestRestore_DirectRoundTrip(t *testing.T) {
	h := newHarness(t)
	if err := h.exec.Patch(context.Background(), h.target); err != nil {
		t.Fatalf("Patch: %v", err)
	}

	if err := h.exec.Restore(context.Background(), h.target); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	data, err := os.ReadFile(h.target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if string(data) != "original jar" {
		t.Fatalf("target = %q after restore", data)
	}
	if IsPatched(h.target) {
		t.Fatalf("marker must be removed on restore")
	}
	if len(h.platform.elevatedBodies) != 0 {
		t.Fatalf("writable restore must not elevate")
	}
}

func TestRestore_NeverPatched(t *testing.T) {
	h := newHarness(t)
	err := h.exec.Restore(context.Background(), h.target)
	if !errors.Is(err, patcherr.ErrNotPatched) {
		t.Fatalf("expected ErrNotPatched, got %v", err)
	}
	if len(h.platform.elevatedBodies) != 0 {
		t.Fatalf("an unpatched jar must not trigger elevation")
	}
}

func TestRestore_MarkerWithoutBackup(t *testing.T) {
	h := newHarness(t)
	if err := os.WriteFile(MarkerPath(h.target), []byte("patched"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	err := h.exec.Restore(context.Background(), h.target)
	if !errors.Is(err, patcherr.ErrBackupNotFound) {
		t.Fatalf("expected ErrBackupNotFound, got %v", err)
	}
}

func TestRestore_ElevatesOnlyOnPermissionFailure(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission bits")
	}
	h := newHarness(t)
	if err := h.exec.Patch(context.Background(), h.target); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if err := os.Chmod(h.target, 0o444); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(h.target, 0o644) })

	if err := h.exec.Restore(context.Background(), h.target); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(h.platform.elevatedBodies) != 1 {
		t.Fatalf("expected one elevated run, got %d", len(h.platform.elevatedBodies))
	}
	body := h.platform.elevatedBodies[0]
	for _, want := range []string{"sha256sum", "cp ", "rm -f"} {
		if !strings.Contains(body, want) {
			t.Fatalf("elevated restore script missing %q: %q", want, body)
		}
	}
}

func TestRestore_PermissionFailureWithoutMechanism(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission bits")
	}
	h := newHarness(t)
	h.platform.mechanism = false
	if err := h.exec.Patch(context.Background(), h.target); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if err := os.Chmod(h.target, 0o444); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(h.target, 0o644) })

	err := h.exec.Restore(context.Background(), h.target)
	if !errors.Is(err, patcherr.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestHasBackup(t *testing.T) {
	h := newHarness(t)
	if h.exec.HasBackup(h.target) {
		t.Fatalf("no backup expected before patching")
	}
	if err := h.exec.Patch(context.Background(), h.target); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if !h.exec.HasBackup(h.target) {
		t.Fatalf("backup expected after patching")
	}
}

func TestRestore_SimpleBackupFallback(t *testing.T) {
	h := newHarness(t)
	if err := h.exec.Patch(context.Background(), h.target); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	// A cleared cache loses the namespaced store; the fixed-name copy
	// beside the jar survives it.
	dir, err := h.exec.Backups.NamespaceDir(h.target)
	if err != nil {
		t.Fatalf("NamespaceDir: %v", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("remove namespace: %v", err)
	}
	if !h.exec.HasBackup(h.target) {
		t.Fatalf("simple backup must still count as restorable")
	}

	if err := h.exec.Restore(context.Background(), h.target); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	data, err := os.ReadFile(h.target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if string(data) != "original jar" {
		t.Fatalf("target = %q after restore", data)
	}
	if IsPatched(h.target) {
		t.Fatalf("marker must be removed on restore")
	}
	if len(h.platform.elevatedBodies) != 0 {
		t.Fatalf("writable restore must not elevate")
	}
}

func TestRestore_ElevatedSimpleBackupFallback(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission bits")
	}
	h := newHarness(t)
	if err := h.exec.Patch(context.Background(), h.target); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	dir, err := h.exec.Backups.NamespaceDir(h.target)
	if err != nil {
		t.Fatalf("NamespaceDir: %v", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("remove namespace: %v", err)
	}
	if err := os.Chmod(h.target, 0o444); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(h.target, 0o644) })

	if err := h.exec.Restore(context.Background(), h.target); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(h.platform.elevatedBodies) != 1 {
		t.Fatalf("expected one elevated run, got %d", len(h.platform.elevatedBodies))
	}
	body := h.platform.elevatedBodies[0]
	if !strings.Contains(body, backup.SimplePath(h.target)) {
		t.Fatalf("elevated restore must copy the simple backup: %q", body)
	}
	if !strings.Contains(body, "sha256sum") {
		t.Fatalf("elevated restore must verify the simple sidecar: %q", body)
	}
}

func TestPatch_TimeoutBoundsToolNotElevation(t *testing.T) {
	h := newHarness(t)
	h.exec.Timeout = time.Hour
	h.platform.writable = func(string) bool { return false }

	runTool := h.exec.runTool
	var toolDeadline bool
	h.exec.runTool = func(ctx context.Context, javaPath string, toolPath string, jarPath string, id elevate.Identity) (string, string, error) {
		_, toolDeadline = ctx.Deadline()
		return runTool(ctx, javaPath, toolPath, jarPath, id)
	}
	var elevatedDeadline bool
	h.platform.runElevated = func(ctx context.Context, script elevate.Script) (elevate.Result, error) {
		_, elevatedDeadline = ctx.Deadline()
		return elevate.Result{}, nil
	}

	if err := h.exec.Patch(context.Background(), h.target); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if !toolDeadline {
		t.Fatalf("tool run must carry the subprocess deadline")
	}
	if elevatedDeadline {
		t.Fatalf("elevated run must not carry a deadline")
	}
}
