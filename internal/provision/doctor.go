package provision

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
	"time"
)

// CheckResult is one preflight check outcome, consumed by both the doctor
// command and the wizard's preflight screen.
type CheckResult struct {
	Name string
	OK   bool
	Err  error
}

// RunChecks verifies the host before provisioning. Failures are reported as
// warnings; the caller decides whether to proceed.
func RunChecks(cfg DeploymentConfig) []CheckResult {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"docker binary", func() error {
			_, err := exec.LookPath("docker")
			return err
		}},
		{"docker compose", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_, err := RunCmdCapture(ctx, "docker", "compose", "version")
			return err
		}},
		{"docker daemon", func() error {
			cli, err := newRuntimeClient()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_, err = cli.Ping(ctx)
			return err
		}},
		{cfg.Home + " writable", func() error {
			return writableCheck(cfg.Home)
		}},
		{"disk space >= 5GiB", func() error {
			return diskCheck(cfg.Home, 5)
		}},
	}

	if cfg.TLSMode != TLSHostDelegated {
		checks = append(checks, struct {
			name string
			fn   func() error
		}{"ports 80/443 free", portsCheck})
	}

	results := make([]CheckResult, 0, len(checks))
	for _, check := range checks {
		err := check.fn()
		results = append(results, CheckResult{Name: check.name, OK: err == nil, Err: err})
	}
	return results
}

// RunDoctor prints the check results in the CLI.
func RunDoctor(cfg DeploymentConfig) error {
	fmt.Println("taskbotctl doctor")
	fmt.Printf("runtime: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	for _, r := range RunChecks(cfg) {
		if r.OK {
			fmt.Printf("[ OK ] %s\n", r.Name)
		} else {
			fmt.Printf("[WARN] %s: %v\n", r.Name, r.Err)
		}
	}
	return nil
}

func writableCheck(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "taskbot-write-check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return nil
}

func diskCheck(path string, minGiB uint64) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return err
	}
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return err
	}
	free := (stat.Bavail * uint64(stat.Bsize)) / (1024 * 1024 * 1024)
	if free < minGiB {
		return fmt.Errorf("free space %dGiB < %dGiB", free, minGiB)
	}
	return nil
}

func portsCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	out, err := RunCmdCapture(ctx, "ss", "-ltn")
	if err != nil {
		return err
	}
	if strings.Contains(out, ":80 ") || strings.Contains(out, ":443 ") {
		return fmt.Errorf("ports 80/443 already in use (use external TLS mode behind an existing proxy)")
	}
	return nil
}
