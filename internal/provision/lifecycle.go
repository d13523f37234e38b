package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
)

const (
	readinessDeadline = 2 * time.Minute
	readinessBaseWait = 2 * time.Second
)

// Lifecycle drives the container stack through docker compose for the verbs
// and the engine API for inspection. Every operation is idempotent and safe
// to re-invoke.
type Lifecycle struct {
	cfg    DeploymentConfig
	docker runtimeClient

	// non-critical services whose image could not be pulled or found
	// locally; excluded from up and from readiness
	skipped map[string]bool

	// exec seams, replaced in tests
	stream  func(ctx context.Context, name string, args ...string) error
	capture func(ctx context.Context, name string, args ...string) (string, error)
}

func NewLifecycle(cfg DeploymentConfig) (*Lifecycle, error) {
	cli, err := newRuntimeClient()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrerequisiteMissing, err)
	}
	return &Lifecycle{
		cfg:     cfg,
		docker:  cli,
		stream:  RunCmdStream,
		capture: RunCmdCapture,
	}, nil
}

func projectFilter() filters.Args {
	return filters.NewArgs(filters.Arg("label", "com.docker.compose.project="+ProjectName))
}

// DetectExisting reports whether containers from a prior deployment are
// present on the host, running or stopped.
func (l *Lifecycle) DetectExisting(ctx context.Context) (bool, error) {
	list, err := l.docker.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: projectFilter(),
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPrerequisiteMissing, err)
	}
	return len(list) > 0, nil
}

// Teardown stops and removes the stack's containers. Volumes are only
// removed when destroyVolumes is set; a routine update must never pass
// true, or initialized datastore state is lost.
func (l *Lifecycle) Teardown(ctx context.Context, destroyVolumes bool) error {
	args := append(ComposeArgs(l.cfg), "down", "--remove-orphans")
	if destroyVolumes {
		args = append(args, "-v")
	}
	if err := l.stream(ctx, "docker", args...); err != nil {
		return fmt.Errorf("teardown: %w", err)
	}
	return nil
}

// PullImages fetches the image of every declared service. A failed pull is
// tolerated when a cached copy exists, and for non-critical services even
// without one; a required image that is neither pullable nor cached is
// fatal.
func (l *Lifecycle) PullImages(ctx context.Context) error {
	l.skipped = map[string]bool{}
	for _, svc := range StackServices(l.cfg) {
		args := append(ComposeArgs(l.cfg), "pull", svc.Name)
		out, err := l.capture(ctx, "docker", args...)
		if err == nil {
			continue
		}
		if l.imageCached(ctx, svc.Image) {
			fmt.Printf("pull %s failed, using cached image (%s)\n", svc.Name, svc.Image)
			continue
		}
		if !svc.Required {
			fmt.Printf("pull %s failed and no cached image; continuing without it\n", svc.Name)
			l.skipped[svc.Name] = true
			continue
		}
		return &ImagePullError{
			Image:    svc.Image,
			Required: true,
			Err:      fmt.Errorf("%v: %s", err, out),
		}
	}
	return nil
}

func (l *Lifecycle) imageCached(ctx context.Context, image string) bool {
	_, _, err := l.docker.ImageInspectWithRaw(ctx, image)
	return err == nil
}

// activeServices is the declared service set minus any non-critical services
// whose image is unavailable.
func (l *Lifecycle) activeServices() []ServiceSpec {
	specs := StackServices(l.cfg)
	if len(l.skipped) == 0 {
		return specs
	}
	active := make([]ServiceSpec, 0, len(specs))
	for _, svc := range specs {
		if !l.skipped[svc.Name] {
			active = append(active, svc)
		}
	}
	return active
}

// Start brings the stack up and waits for every active service to reach a
// running state, polling with backoff instead of trusting start order.
// When a non-critical image was skipped during the pull phase, up is given
// the remaining service names so compose does not retry the failed pull.
func (l *Lifecycle) Start(ctx context.Context) error {
	args := append(ComposeArgs(l.cfg), "up", "-d", "--remove-orphans")
	if len(l.skipped) > 0 {
		for _, svc := range l.activeServices() {
			args = append(args, svc.Name)
		}
	}
	if err := l.stream(ctx, "docker", args...); err != nil {
		return fmt.Errorf("compose up: %w", err)
	}
	return l.waitReady(ctx)
}

func (l *Lifecycle) waitReady(ctx context.Context) error {
	deadline := time.Now().Add(readinessDeadline)
	wait := readinessBaseWait
	var lastMissing string

	for {
		missing, err := l.notRunning(ctx)
		if err != nil {
			return err
		}
		if missing == "" {
			return nil
		}
		lastMissing = missing

		if time.Now().After(deadline) {
			return &LifecycleError{Service: lastMissing}
		}
		select {
		case <-ctx.Done():
			return &LifecycleError{Service: lastMissing, Err: ctx.Err()}
		case <-time.After(wait):
		}
		if wait < 16*time.Second {
			wait *= 2
		}
	}
}

// notRunning returns the first active service without a running container,
// or "" when the whole stack is up.
func (l *Lifecycle) notRunning(ctx context.Context) (string, error) {
	list, err := l.docker.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: projectFilter(),
	})
	if err != nil {
		return "", fmt.Errorf("inspect stack state: %w", err)
	}

	running := map[string]bool{}
	for _, c := range list {
		svc := c.Labels["com.docker.compose.service"]
		if svc != "" && c.State == "running" {
			running[svc] = true
		}
	}
	for _, svc := range l.activeServices() {
		if !running[svc.Name] {
			return svc.Name, nil
		}
	}
	return "", nil
}

// Remediation returns operator guidance for a lifecycle failure.
func Remediation(err error) string {
	var le *LifecycleError
	if errors.As(err, &le) {
		return fmt.Sprintf("inspect the logs with: docker compose -p %s logs %s\nthen re-run: taskbotctl apply", ProjectName, le.Service)
	}
	var pe *ImagePullError
	if errors.As(err, &pe) {
		return fmt.Sprintf("check registry access and retry: docker pull %s", pe.Image)
	}
	return ""
}
