// Command ptsrun automates a batch of Bluetooth PTS test cases against
// an Implementation Under Test, per spec.md §6.
//
// Grounded on original_source/src/main.rs's Opts/main, translated from
// structopt+async-std into pflag+stdlib context/goroutines.
package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/btpts/ptsrunner/internal/batch"
	"github.com/btpts/ptsrunner/internal/config"
	"github.com/btpts/ptsrunner/internal/hciport"
	"github.com/btpts/ptsrunner/internal/iut"
	"github.com/btpts/ptsrunner/internal/profile"
	"github.com/btpts/ptsrunner/internal/ptsinstall"
	"github.com/btpts/ptsrunner/internal/ptslog"
	"github.com/btpts/ptsrunner/internal/session"
	"github.com/btpts/ptsrunner/internal/wineenv"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath        = pflag.String("config", "", "Config file path (JSON, jsonc, or YAML)")
		hciPort           = pflag.Int("hci", 6402, "TCP port the virtual Bluetooth controller exposes for HCI relay")
		iutModule         = pflag.String("iut", "", "Executable implementing the IUT side (required)")
		list              = pflag.Bool("list", false, "List selected tests and exit")
		failFast          = pflag.Bool("fail-fast", false, "Stop after the first non-successful result")
		inactivityTimeout = pflag.Int("inactivity-timeout", 60, "Per-test inactivity timeout, in seconds")
		ptsSetup          = pflag.String("pts-setup", "", "PTS setup executable path (downloaded from the SIG website)")
		ptsCache          = pflag.String("pts-cache", "", "Directory to install/cache the PTS runtime in (defaults to the OS cache dir)")
		debug             = pflag.Bool("debug", false, "Verbose logging")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <test_prefix> [-- iut-args...]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	args := pflag.Args()
	if len(args) < 1 {
		pflag.Usage()
		return 2
	}
	testPrefix := args[0]
	iutArgs := args[1:]

	logger := ptslog.New(os.Stderr, *debug)

	profileName := testPrefix
	if i := strings.Index(testPrefix, "/"); i >= 0 {
		profileName = testPrefix[:i]
	}

	var cfg *config.Config
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			logger.Error("failed to load config", "err", err)
			return 1
		}
	} else {
		cfg = &config.Config{}
	}

	cacheDir := *ptsCache
	if cacheDir == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			logger.Error("failed to resolve cache dir", "err", err)
			return 1
		}
		cacheDir = filepath.Join(dir, "pts")
	}

	env, err := wineenv.Spawn(cacheDir, wineenv.Win64, logger)
	if err != nil {
		logger.Error("failed to start runtime", "err", err)
		return 1
	}
	defer env.Close()

	if ptsinstall.IsInstallationNeeded(env) {
		if *ptsSetup == "" {
			logger.Error("PTS is not installed and --pts-setup was not given")
			return 1
		}
		installer, err := os.Open(*ptsSetup)
		if err != nil {
			logger.Error("failed to open installer", "err", err)
			return 1
		}
		err = ptsinstall.InstallPTS(env, installer, logger)
		installer.Close()
		if err != nil {
			logger.Error("installation failed", "err", err)
			return 1
		}
	}

	pics, err := profile.ParsePICS(env.DriveC(), profileName)
	if err != nil {
		logger.Error("failed to load PICS", "err", err)
		return 1
	}
	pixit, err := profile.ParsePIXIT(env.DriveC(), profileName)
	if err != nil {
		logger.Error("failed to load PIXIT", "err", err)
		return 1
	}
	ets, err := profile.ParseETS(env.DriveC(), profileName)
	if err != nil {
		logger.Error("failed to load ETS", "err", err)
		return 1
	}

	icsOverrides := cfg.ICSOverrides()
	lookup := session.LookupFromPICS(pics, icsOverrides)
	skip := cfg.SkipSet()

	var tests []string
	for _, name := range ets.EnabledTestCases(lookup) {
		qualified := profileName + "/" + name
		if !strings.HasPrefix(qualified, testPrefix) || skip[qualified] {
			continue
		}
		tests = append(tests, qualified)
	}

	fmt.Printf("Tests: %v\n", tests)
	if *list {
		return 0
	}

	overrides := session.Overrides{ICS: icsOverrides, IXIT: cfg.IXITFor(profileName)}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results := batch.Run(ctx, tests, batch.Options{FailFast: *failFast}, func(ctx context.Context, qualified string) (batch.Verdict, error) {
		_, testCase, _ := strings.Cut(qualified, "/")
		return runOne(ctx, env, logger, profileName, testCase, pics, pixit, overrides, *iutModule, iutArgs, *hciPort, *inactivityTimeout)
	})

	batch.Report(os.Stdout, results)

	for _, r := range results {
		if r.Result != batch.VerdictPass && r.Result != batch.VerdictNone {
			return 1
		}
	}
	return 0
}

func runOne(
	ctx context.Context,
	env *wineenv.Env,
	logger *log.Logger,
	profileName, testCase string,
	pics *profile.PICS,
	pixit *profile.PIXIT,
	overrides session.Overrides,
	iutModule string,
	iutArgs []string,
	hciPort int,
	inactivityTimeoutSecs int,
) (batch.Verdict, error) {
	iutProc, err := iut.Spawn(iutModule, iutArgs, hciPort, time.Duration(inactivityTimeoutSecs)*time.Second)
	if err != nil {
		return batch.VerdictError, fmt.Errorf("iut init: %w", err)
	}
	defer iutProc.Close()

	params := session.BuildParameters(pics, pixit, overrides, iutProc.Address())

	out := make(chan session.EventRecord, 32)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for rec := range out {
			_ = batch.WriteLine(os.Stdout, rec)
		}
	}()

	verdictName, err := session.Run(env, iutProc, pipeHCI(hciPort), session.Options{
		PTSPath:           ptsinstall.PTSPath,
		Profile:           profileName,
		TestCase:          testCase,
		Parameters:        params,
		InactivityTimeout: time.Duration(inactivityTimeoutSecs) * time.Second,
	}, logger, out)
	close(out)
	wg.Wait()

	if err != nil {
		return batch.VerdictError, err
	}
	return batch.VerdictFromFinalName(verdictName)
}

// pipeHCI relays bytes between the virtual serial port and a TCP
// socket exposing the virtual Bluetooth controller, per
// original_source/src/main.rs's connect_to_hci.
func pipeHCI(port int) session.PipeHCI {
	return func(p *hciport.Port) error {
		conn, err := net.Dial("tcp", "127.0.0.1:"+strconv.Itoa(port))
		if err != nil {
			return fmt.Errorf("hci: connect: %w", err)
		}
		defer conn.Close()

		errCh := make(chan error, 2)
		go func() { _, err := io.Copy(conn, p); errCh <- err }()
		go func() { _, err := io.Copy(p, conn); errCh <- err }()
		return <-errCh
	}
}
