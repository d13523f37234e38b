package provision

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Run dispatches the non-interactive commands. The setup wizard lives in
// internal/tui and is dispatched from main to keep the packages acyclic.
func Run(args []string) error {
	if len(args) < 1 {
		Usage()
		os.Exit(1)
	}

	cmd := args[0]
	cmdArgs := args[1:]
	ctx := context.Background()

	switch cmd {
	case "init":
		return cmdInit(cmdArgs)
	case "apply":
		return cmdApply(ctx, cmdArgs)
	case "update":
		return cmdUpdate(ctx, cmdArgs)
	case "destroy":
		return cmdDestroy(ctx, cmdArgs)
	case "status":
		return cmdStatus(ctx, cmdArgs)
	case "doctor":
		return cmdDoctor(cmdArgs)
	case "help", "--help", "-h":
		Usage()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func Usage() {
	fmt.Println(`taskbotctl - single-host provisioning for the taskbot stack

Usage:
  taskbotctl setup                          # interactive setup wizard
  taskbotctl init [flags]                   # non-interactive configuration
  taskbotctl apply                          # write artifacts, pull images, start stack
  taskbotctl update                         # safe restart with fresh images (volumes kept)
  taskbotctl destroy --yes                  # remove containers AND volumes
  taskbotctl status
  taskbotctl doctor

Init flags:
  --host HOST            public domain or IP (required on first run)
  --license-token TOKEN  license token issued for this installation
  --tls MODE             none | self-signed | provided | external (default none)
  --cert PATH            certificate chain, tls=provided only
  --key PATH             private key, tls=provided only
  --home DIR             deployment directory (default /srv/taskbot, or $TASKBOT_HOME)

TLS modes:`)

	modes := map[TLSMode]string{
		TLSNone:          "plain HTTP on port 80",
		TLSSelfSigned:    "generated self-signed certificate, HTTP redirects to HTTPS",
		TLSUserProvided:  "operator-supplied certificate and key",
		TLSHostDelegated: "existing host-managed proxy terminates TLS; no ports bound",
	}
	names := make([]string, 0, len(modes))
	for m := range modes {
		names = append(names, string(m))
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-13s %s\n", name, modes[TLSMode(name)])
	}
}

func parseAnswers(fs *flag.FlagSet, args []string) (Answers, error) {
	host := fs.String("host", "", "public domain or IP")
	token := fs.String("license-token", "", "license token")
	tlsMode := fs.String("tls", "", "tls mode: none, self-signed, provided, external")
	cert := fs.String("cert", "", "certificate chain path")
	key := fs.String("key", "", "private key path")
	home := fs.String("home", "", "deployment directory")
	if err := fs.Parse(args); err != nil {
		return Answers{}, err
	}
	return Answers{
		Host:         strings.TrimSpace(*host),
		LicenseToken: strings.TrimSpace(*token),
		TLSMode:      TLSMode(strings.TrimSpace(*tlsMode)),
		CertPath:     strings.TrimSpace(*cert),
		KeyPath:      strings.TrimSpace(*key),
		Home:         *home,
	}, nil
}

func cmdInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	answers, err := parseAnswers(fs, args)
	if err != nil {
		return err
	}
	cfg, err := Resolve(answers)
	if err != nil {
		return err
	}
	if err := InitDeployment(cfg); err != nil {
		return err
	}
	fmt.Println("next: taskbotctl apply")
	return nil
}

func cmdApply(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	answers, err := parseAnswers(fs, args)
	if err != nil {
		return err
	}
	cfg, err := Resolve(answers)
	if err != nil {
		return err
	}
	if err := Apply(ctx, cfg); err != nil {
		printRemediation(err)
		return err
	}
	return nil
}

func cmdUpdate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	answers, err := parseAnswers(fs, args)
	if err != nil {
		return err
	}
	cfg, err := Resolve(answers)
	if err != nil {
		return err
	}
	if err := Update(ctx, cfg); err != nil {
		printRemediation(err)
		return err
	}
	return nil
}

func cmdDestroy(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("destroy", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "confirm removal of containers AND data volumes")
	home := fs.String("home", "", "deployment directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return errors.New("destroy removes all data volumes; re-run with --yes to confirm")
	}

	cfg, found, err := LoadConfig(DeployHome(*home))
	if err != nil {
		return err
	}
	if !found {
		return errors.New("no deployment configured; nothing to destroy")
	}
	return Destroy(ctx, cfg)
}

func cmdStatus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	home := fs.String("home", "", "deployment directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, found, err := LoadConfig(DeployHome(*home))
	if err != nil {
		return err
	}
	if !found {
		fmt.Println("no deployment configured; run: taskbotctl setup")
		return nil
	}

	fmt.Printf("deployment: %s\n", cfg.DeploymentID)
	fmt.Printf("path:       %s\n", cfg.Home)
	fmt.Printf("public url: %s\n", cfg.PublicURL())
	fmt.Printf("tls mode:   %s\n", cfg.TLSMode)

	composeArgs := append(ComposeArgs(cfg), "ps")
	output, cmdErr := RunCmdCapture(ctx, "docker", composeArgs...)
	if cmdErr != nil {
		fmt.Println("docker compose status unavailable:")
		fmt.Println(strings.TrimSpace(output))
		return nil
	}
	fmt.Println(output)
	return nil
}

func cmdDoctor(args []string) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	home := fs.String("home", "", "deployment directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, found, err := LoadConfig(DeployHome(*home))
	if err != nil {
		return err
	}
	if !found {
		cfg = DeploymentConfig{Home: DeployHome(*home), TLSMode: TLSNone}
	}
	return RunDoctor(cfg)
}

func printRemediation(err error) {
	if hint := Remediation(err); hint != "" {
		fmt.Fprintln(os.Stderr, hint)
	}
}
