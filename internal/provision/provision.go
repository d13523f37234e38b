package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// RenderAll produces every artifact for the deployment. Nothing is written
// here: validation failures (including missing user certificates) abort
// before any file is touched.
func RenderAll(cfg DeploymentConfig) ([]RenderedArtifact, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	var artifacts []RenderedArtifact

	tls, err := RenderTLSMaterials(cfg)
	if err != nil {
		return nil, err
	}
	artifacts = append(artifacts, tls...)

	proxy, err := RenderProxyConfig(cfg)
	if err != nil {
		return nil, err
	}
	artifacts = append(artifacts, proxy...)

	artifacts = append(artifacts, RenderEnvFiles(cfg)...)

	compose, err := RenderCompose(cfg)
	if err != nil {
		return nil, err
	}
	artifacts = append(artifacts, compose)

	return artifacts, nil
}

// InitDeployment renders and writes all artifacts and persists the config.
// Idempotent: re-running with the same inputs rewrites identical bytes.
func InitDeployment(cfg DeploymentConfig) error {
	artifacts, err := RenderAll(cfg)
	if err != nil {
		return err
	}
	if err := ensureLayout(cfg); err != nil {
		return err
	}
	if err := WriteArtifacts(artifacts); err != nil {
		return err
	}
	if err := SaveConfig(cfg); err != nil {
		return err
	}
	fmt.Printf("configured deployment %s at %s\n", cfg.DeploymentID, cfg.Home)
	return nil
}

// ensureLayout creates the deployment directory tree, including the SSH key
// directory used by the agent deployment feature.
func ensureLayout(cfg DeploymentConfig) error {
	dirs := []struct {
		path string
		mode os.FileMode
	}{
		{cfg.Home, 0o750},
		{cfg.EnvDir(), 0o750},
		{cfg.NginxDir(), 0o750},
		{cfg.CertsDir(), 0o750},
		{filepath.Join(cfg.Home, "uploads"), 0o750},
		{filepath.Join(cfg.Home, "ssh"), 0o700},
	}
	for _, d := range dirs {
		if err := ensureDir(d.path, d.mode); err != nil {
			return &ArtifactWriteError{Path: d.path, Err: err}
		}
	}
	return nil
}

// Apply brings the stack to its desired state: render, write, pull, up.
func Apply(ctx context.Context, cfg DeploymentConfig) error {
	if err := InitDeployment(cfg); err != nil {
		return err
	}
	lc, err := NewLifecycle(cfg)
	if err != nil {
		return err
	}
	if err := lc.PullImages(ctx); err != nil {
		return err
	}
	if err := lc.Start(ctx); err != nil {
		return err
	}
	fmt.Printf("stack is up: %s\n", cfg.PublicURL())
	return nil
}

// Update is the routine upgrade path: safe teardown (volumes kept), fresh
// image pull, and start.
func Update(ctx context.Context, cfg DeploymentConfig) error {
	if err := InitDeployment(cfg); err != nil {
		return err
	}
	lc, err := NewLifecycle(cfg)
	if err != nil {
		return err
	}
	existing, err := lc.DetectExisting(ctx)
	if err != nil {
		return err
	}
	if existing {
		if err := lc.Teardown(ctx, false); err != nil {
			return err
		}
	}
	if err := lc.PullImages(ctx); err != nil {
		return err
	}
	if err := lc.Start(ctx); err != nil {
		return err
	}
	fmt.Printf("stack updated: %s\n", cfg.PublicURL())
	return nil
}

// Destroy removes containers AND volumes. All datastore contents and the
// generated secrets become unusable; the caller must have confirmed.
func Destroy(ctx context.Context, cfg DeploymentConfig) error {
	lc, err := NewLifecycle(cfg)
	if err != nil {
		return err
	}
	if err := lc.Teardown(ctx, true); err != nil {
		return err
	}
	fmt.Println("stack destroyed; persisted volumes removed")
	fmt.Println("the stored config (including secrets) is kept at " + cfg.ConfigPath() + "; delete it to start completely fresh")
	return nil
}
