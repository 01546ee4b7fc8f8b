// Package ptsinstall performs the idempotent install of the PTS payload
// into a runtime prefix.
//
// Grounded on original_source/libpts/src/installer.rs: write the
// installer blob, run it with /extract, locate the extracted hex
// directory, pull vc_red.cab out of the bundled vcredist, rename
// nosxs_mfc90.dll into system32, rename the extract dir to "pts", and
// lowercase PICSX/PIXITX file extensions because the runtime's
// filesystem is case-sensitive while PTS assumes Windows case
// insensitivity.
package ptsinstall

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/btpts/ptsrunner/internal/wineenv"
	"github.com/charmbracelet/log"
)

// PTSPath is the directory name the installed PTS tree lives under,
// relative to the prefix's drive_c.
const PTSPath = "pts"

var extractDirPattern = regexp.MustCompile(`^[0-9A-F]{7}$`)

// IsInstallationNeeded reports whether PTS still needs to be unpacked
// into the prefix.
func IsInstallationNeeded(env *wineenv.Env) bool {
	_, err := os.Stat(filepath.Join(env.DriveC(), PTSPath))
	return os.IsNotExist(err)
}

// InstallPTS writes installerSrc to the prefix, runs it under the
// runtime with /extract, and assembles the resulting tree into
// drive_c/pts.
func InstallPTS(env *wineenv.Env, installerSrc io.Reader, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}

	driveC := env.DriveC()
	installerPath := filepath.Join(driveC, "installer.exe")
	tmp := filepath.Join(driveC, "tmp")
	system32 := filepath.Join(driveC, "windows", "system32")
	pts := filepath.Join(driveC, PTSPath)

	dst, err := os.Create(installerPath)
	if err != nil {
		return fmt.Errorf("ptsinstall: create installer.exe: %w", err)
	}
	if _, err := io.Copy(dst, installerSrc); err != nil {
		_ = dst.Close()
		return fmt.Errorf("ptsinstall: write installer.exe: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("ptsinstall: close installer.exe: %w", err)
	}

	if err := os.RemoveAll(tmp); err != nil {
		return fmt.Errorf("ptsinstall: clear tmp: %w", err)
	}
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return fmt.Errorf("ptsinstall: create tmp: %w", err)
	}
	if err := os.MkdirAll(system32, 0o755); err != nil {
		return fmt.Errorf("ptsinstall: create system32: %w", err)
	}

	logger.Info("extracting PTS installer")
	extractCmd := env.Command("installer.exe", true, "")
	extractCmd.Args = append(extractCmd.Args, "/extract", `C:\tmp`)
	if err := extractCmd.Run(); err != nil {
		return fmt.Errorf("ptsinstall: run installer: %w", err)
	}

	extractDir, err := findExtractDir(tmp)
	if err != nil {
		return err
	}

	if err := extractVCRedist(tmp); err != nil {
		return err
	}

	if err := os.Rename(filepath.Join(tmp, "nosxs_mfc90.dll"), filepath.Join(system32, "mfc90.dll")); err != nil {
		return fmt.Errorf("ptsinstall: install mfc90.dll: %w", err)
	}

	if err := os.Rename(filepath.Join(tmp, extractDir), pts); err != nil {
		return fmt.Errorf("ptsinstall: rename extracted tree to pts: %w", err)
	}

	if err := os.RemoveAll(tmp); err != nil {
		return fmt.Errorf("ptsinstall: clean up tmp: %w", err)
	}

	if err := lowercaseExtensions(filepath.Join(pts, "bin", "Bluetooth", "PIXITX")); err != nil {
		return err
	}
	if err := lowercaseExtensions(filepath.Join(pts, "bin", "Bluetooth", "PICSX")); err != nil {
		return err
	}

	logger.Info("PTS installed", "path", pts)
	return nil
}

func findExtractDir(tmp string) (string, error) {
	entries, err := os.ReadDir(tmp)
	if err != nil {
		return "", fmt.Errorf("ptsinstall: read tmp: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() && extractDirPattern.MatchString(entry.Name()) {
			return entry.Name(), nil
		}
	}
	return "", fmt.Errorf("ptsinstall: no extracted directory matching %s found under %s", extractDirPattern, tmp)
}

func extractVCRedist(tmp string) error {
	inner := exec.Command("cabextract",
		filepath.Join("Visual C++ 2008 Redistributable", "vcredist_x86.exe"),
		"-F", "vc_red.cab")
	inner.Dir = tmp
	if err := inner.Run(); err != nil {
		return fmt.Errorf("ptsinstall: extract vcredist inner cab: %w", err)
	}

	cab := exec.Command("cabextract", "vc_red.cab")
	cab.Dir = tmp
	if err := cab.Run(); err != nil {
		return fmt.Errorf("ptsinstall: extract vc_red.cab: %w", err)
	}
	return nil
}

func lowercaseExtensions(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("ptsinstall: read %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext == "" {
			continue
		}
		lower := strings.ToLower(ext)
		if lower == ext {
			continue
		}
		oldPath := filepath.Join(dir, name)
		newPath := filepath.Join(dir, strings.TrimSuffix(name, ext)+lower)
		if err := os.Rename(oldPath, newPath); err != nil {
			return fmt.Errorf("ptsinstall: lowercase extension for %s: %w", name, err)
		}
	}
	return nil
}

// InstallServer writes the bundled server executable into the
// prefix's PTS tree.
func InstallServer(env *wineenv.Env, server io.Reader) error {
	path := filepath.Join(env.DriveC(), PTSPath, "bin", "server.exe")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ptsinstall: create server.exe parent dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ptsinstall: create server.exe: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, server); err != nil {
		return fmt.Errorf("ptsinstall: write server.exe: %w", err)
	}
	return nil
}
