package provision

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
)

type fakeDocker struct {
	containers []types.Container
	listErr    error
	cached     map[string]bool
}

func (f *fakeDocker) Ping(ctx context.Context) (types.Ping, error) {
	return types.Ping{}, nil
}

func (f *fakeDocker) ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error) {
	return f.containers, f.listErr
}

func (f *fakeDocker) ImageInspectWithRaw(ctx context.Context, imageID string) (types.ImageInspect, []byte, error) {
	if f.cached[imageID] {
		return types.ImageInspect{}, nil, nil
	}
	return types.ImageInspect{}, nil, errors.New("no such image")
}

type execRecorder struct {
	calls   [][]string
	failOn  func(args []string) error
	capture string
}

func (r *execRecorder) stream(ctx context.Context, name string, args ...string) error {
	r.calls = append(r.calls, args)
	if r.failOn != nil {
		return r.failOn(args)
	}
	return nil
}

func (r *execRecorder) captureFn(ctx context.Context, name string, args ...string) (string, error) {
	r.calls = append(r.calls, args)
	if r.failOn != nil {
		return r.capture, r.failOn(args)
	}
	return r.capture, nil
}

func newTestLifecycle(cfg DeploymentConfig, docker *fakeDocker, rec *execRecorder) *Lifecycle {
	return &Lifecycle{
		cfg:     cfg,
		docker:  docker,
		stream:  rec.stream,
		capture: rec.captureFn,
	}
}

func hasArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func TestTeardownUpdateModeKeepsVolumes(t *testing.T) {
	rec := &execRecorder{}
	lc := newTestLifecycle(testConfig("/srv/taskbot"), &fakeDocker{}, rec)

	if err := lc.Teardown(context.Background(), false); err != nil {
		t.Fatalf("Teardown: %v", err)
	}
	if len(rec.calls) != 1 {
		t.Fatalf("expected one docker invocation, got %d", len(rec.calls))
	}
	args := rec.calls[0]
	if !hasArg(args, "down") {
		t.Errorf("missing down verb: %v", args)
	}
	if hasArg(args, "-v") {
		t.Errorf("routine teardown must not remove volumes: %v", args)
	}
}

func TestTeardownDestroyModeRemovesVolumes(t *testing.T) {
	rec := &execRecorder{}
	lc := newTestLifecycle(testConfig("/srv/taskbot"), &fakeDocker{}, rec)

	if err := lc.Teardown(context.Background(), true); err != nil {
		t.Fatalf("Teardown: %v", err)
	}
	if !hasArg(rec.calls[0], "-v") {
		t.Errorf("destructive teardown must remove volumes: %v", rec.calls[0])
	}
}

func TestPullImagesRequiredFailureWithoutCache(t *testing.T) {
	rec := &execRecorder{
		failOn: func(args []string) error {
			if hasArg(args, "pull") && hasArg(args, "taskbot-api") {
				return errors.New("registry unreachable")
			}
			return nil
		},
	}
	lc := newTestLifecycle(testConfig("/srv/taskbot"), &fakeDocker{cached: map[string]bool{}}, rec)

	err := lc.PullImages(context.Background())
	var perr *ImagePullError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ImagePullError, got %v", err)
	}
	if !perr.Required {
		t.Error("api image should be classified required")
	}
	if perr.Image != imageAPI {
		t.Errorf("error names image %q", perr.Image)
	}
}

func TestPullImagesFailureToleratedWithCache(t *testing.T) {
	rec := &execRecorder{
		failOn: func(args []string) error {
			if hasArg(args, "pull") {
				return errors.New("registry unreachable")
			}
			return nil
		},
	}
	cached := map[string]bool{}
	for _, svc := range StackServices(testConfig("/srv/taskbot")) {
		cached[svc.Image] = true
	}
	lc := newTestLifecycle(testConfig("/srv/taskbot"), &fakeDocker{cached: cached}, rec)

	if err := lc.PullImages(context.Background()); err != nil {
		t.Fatalf("cached images should make pull failures non-fatal: %v", err)
	}
}

func TestPullImagesOptionalFailureTolerated(t *testing.T) {
	rec := &execRecorder{
		failOn: func(args []string) error {
			if hasArg(args, "pull") && hasArg(args, "taskbot-installer") {
				return errors.New("registry unreachable")
			}
			return nil
		},
	}
	lc := newTestLifecycle(testConfig("/srv/taskbot"), &fakeDocker{cached: map[string]bool{}}, rec)

	if err := lc.PullImages(context.Background()); err != nil {
		t.Fatalf("installer pull failure should be tolerated: %v", err)
	}
}

func TestStartAfterOptionalPullSkip(t *testing.T) {
	cfg := testConfig("/srv/taskbot")
	rec := &execRecorder{
		failOn: func(args []string) error {
			if hasArg(args, "pull") && hasArg(args, "taskbot-installer") {
				return errors.New("registry unreachable")
			}
			return nil
		},
	}
	var containers []types.Container
	for _, c := range runningStack(cfg) {
		if c.Labels["com.docker.compose.service"] != "taskbot-installer" {
			containers = append(containers, c)
		}
	}
	lc := newTestLifecycle(cfg, &fakeDocker{cached: map[string]bool{}, containers: containers}, rec)

	if err := lc.PullImages(context.Background()); err != nil {
		t.Fatalf("PullImages: %v", err)
	}
	if err := lc.Start(context.Background()); err != nil {
		t.Fatalf("a skipped installer must not fail the start: %v", err)
	}

	var upArgs []string
	for _, call := range rec.calls {
		if hasArg(call, "up") {
			upArgs = call
		}
	}
	if upArgs == nil {
		t.Fatal("no compose up invocation recorded")
	}
	if hasArg(upArgs, "taskbot-installer") {
		t.Errorf("up must not include the skipped service: %v", upArgs)
	}
	if !hasArg(upArgs, "taskbot-api") {
		t.Errorf("up should name the remaining services: %v", upArgs)
	}

	missing, err := lc.notRunning(context.Background())
	if err != nil {
		t.Fatalf("notRunning: %v", err)
	}
	if missing != "" {
		t.Errorf("skipped service reported as missing: %q", missing)
	}
}

func runningStack(cfg DeploymentConfig) []types.Container {
	var out []types.Container
	for _, svc := range StackServices(cfg) {
		out = append(out, types.Container{
			State:  "running",
			Labels: map[string]string{"com.docker.compose.service": svc.Name},
		})
	}
	return out
}

func TestNotRunningAllUp(t *testing.T) {
	cfg := testConfig("/srv/taskbot")
	lc := newTestLifecycle(cfg, &fakeDocker{containers: runningStack(cfg)}, &execRecorder{})

	missing, err := lc.notRunning(context.Background())
	if err != nil {
		t.Fatalf("notRunning: %v", err)
	}
	if missing != "" {
		t.Errorf("expected all services running, got missing %q", missing)
	}
}

func TestNotRunningNamesFailedService(t *testing.T) {
	cfg := testConfig("/srv/taskbot")
	containers := runningStack(cfg)
	for i := range containers {
		if containers[i].Labels["com.docker.compose.service"] == "taskbot-gw" {
			containers[i].State = "exited"
		}
	}
	lc := newTestLifecycle(cfg, &fakeDocker{containers: containers}, &execRecorder{})

	missing, err := lc.notRunning(context.Background())
	if err != nil {
		t.Fatalf("notRunning: %v", err)
	}
	if missing != "taskbot-gw" {
		t.Errorf("missing = %q, want taskbot-gw", missing)
	}
}

func TestDetectExisting(t *testing.T) {
	cfg := testConfig("/srv/taskbot")
	lc := newTestLifecycle(cfg, &fakeDocker{}, &execRecorder{})
	found, err := lc.DetectExisting(context.Background())
	if err != nil {
		t.Fatalf("DetectExisting: %v", err)
	}
	if found {
		t.Error("empty host reported an existing deployment")
	}

	lc = newTestLifecycle(cfg, &fakeDocker{containers: runningStack(cfg)[:1]}, &execRecorder{})
	found, err = lc.DetectExisting(context.Background())
	if err != nil {
		t.Fatalf("DetectExisting: %v", err)
	}
	if !found {
		t.Error("existing containers not detected")
	}
}

func TestRemediationForLifecycleError(t *testing.T) {
	hint := Remediation(&LifecycleError{Service: "taskbot-api"})
	if !strings.Contains(hint, "logs taskbot-api") {
		t.Errorf("remediation should point at service logs: %q", hint)
	}
}
