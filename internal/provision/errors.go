package provision

import (
	"errors"
	"fmt"
)

// ErrPrerequisiteMissing is returned when the container runtime cannot be
// reached at all (binary absent or daemon down).
var ErrPrerequisiteMissing = errors.New("container runtime is not available")

// ConfigurationError reports invalid or missing user input. It is always
// raised before any artifact is written.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// MissingCertificateError reports a user-supplied certificate or key path
// that does not exist on disk.
type MissingCertificateError struct {
	Path string
}

func (e *MissingCertificateError) Error() string {
	return fmt.Sprintf("certificate file not found: %s", e.Path)
}

// ArtifactWriteError wraps a filesystem failure while writing a generated file.
type ArtifactWriteError struct {
	Path string
	Err  error
}

func (e *ArtifactWriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *ArtifactWriteError) Unwrap() error { return e.Err }

// ImagePullError reports a failed image pull. Required is true when the
// image is mandatory for the stack and no cached copy exists locally.
type ImagePullError struct {
	Image    string
	Required bool
	Err      error
}

func (e *ImagePullError) Error() string {
	if e.Required {
		return fmt.Sprintf("pull required image %s: %v", e.Image, e.Err)
	}
	return fmt.Sprintf("pull image %s: %v", e.Image, e.Err)
}

func (e *ImagePullError) Unwrap() error { return e.Err }

// LifecycleError reports a service that failed to reach a running state.
type LifecycleError struct {
	Service string
	Err     error
}

func (e *LifecycleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed to start: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("service %s did not reach running state", e.Service)
}

func (e *LifecycleError) Unwrap() error { return e.Err }
