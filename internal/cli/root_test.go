package cli

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"syncell/internal/models"
	"syncell/pkg/config"
	"syncell/pkg/errors"
	"syncell/pkg/export"
)

// runCLI executes the command tree with args and returns log and stdout output.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var logs, stdout bytes.Buffer
	root := newRootCmd(&logs)
	root.SetOut(&stdout)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return logs.String(), stdout.String(), err
}

func TestGenerateWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "cells.tif")
	labelPath := filepath.Join(dir, "labels.png")
	manifestPath := filepath.Join(dir, "cells.yaml")
	previewPath := filepath.Join(dir, "preview.png")

	logs, _, err := runCLI(t, "generate",
		"--config", filepath.Join(dir, "absent.yaml"),
		"--count", "6", "--seed", "11",
		"--image", imagePath, "--label", labelPath,
		"--manifest", manifestPath, "--label-preview", previewPath,
		"--delete", "1,40")
	if err != nil {
		t.Fatalf("generate failed: %v\n%s", err, logs)
	}

	img, err := export.Load(imagePath)
	if err != nil {
		t.Fatalf("image not readable: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 120, 120) {
		t.Errorf("image bounds = %v", img.Bounds())
	}
	label, err := export.Load(labelPath)
	if err != nil {
		t.Fatalf("label not readable: %v", err)
	}
	gray, ok := label.(*image.Gray)
	if !ok {
		t.Fatalf("label decoded as %T", label)
	}
	for _, v := range gray.Pix {
		if v > 6 || v == 2 {
			t.Fatalf("unexpected label value %d", v)
		}
	}
	if _, err := os.Stat(previewPath); err != nil {
		t.Errorf("preview not written: %v", err)
	}

	m, err := models.LoadManifest(manifestPath)
	if err != nil {
		t.Fatalf("manifest not readable: %v", err)
	}
	if m.Seed != 11 || m.Issued != 6 || m.Live != 5 || len(m.Cells) != 6 {
		t.Errorf("unexpected manifest: %+v", m)
	}
	if !m.Cells[1].Deleted {
		t.Error("slot 1 should be recorded as deleted")
	}
	if !strings.Contains(logs, "cell not found") {
		t.Error("deleting slot 40 should log a not-found warning")
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	dir := t.TempDir()
	run := func(name string) []byte {
		path := filepath.Join(dir, name)
		_, _, err := runCLI(t, "generate", "--config", filepath.Join(dir, "none.yaml"),
			"--seed", "5", "--count", "4", "--irregular-edge",
			"--image", path, "--label", filepath.Join(dir, "l-"+name), "--manifest", "")
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		return data
	}
	if !bytes.Equal(run("a.png"), run("b.png")) {
		t.Error("same seed should produce identical images")
	}
	if _, err := os.Stat(filepath.Join(dir, "cells.yaml")); !os.IsNotExist(err) {
		t.Error("empty --manifest should disable the manifest")
	}
}

func TestGenerateUsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Canvas.Height = 64
	cfg.Canvas.Width = 48
	cfg.Sample.Count = 2
	cfg.Sample.Seed = 3
	cfg.Sample.Row = config.IntRange{Min: 10, Max: 50}
	cfg.Sample.Col = config.IntRange{Min: 10, Max: 40}
	cfg.Output.Image = filepath.Join(dir, "img.png")
	cfg.Output.Label = filepath.Join(dir, "lbl.png")
	cfg.Output.Manifest = filepath.Join(dir, "run.yaml")
	cfgPath := filepath.Join(dir, "syncell.yaml")
	if err := config.SaveConfig(cfg, cfgPath); err != nil {
		t.Fatal(err)
	}

	if _, _, err := runCLI(t, "generate", "-c", cfgPath); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	m, err := models.LoadManifest(cfg.Output.Manifest)
	if err != nil {
		t.Fatal(err)
	}
	if m.Height != 64 || m.Width != 48 || m.Issued != 2 {
		t.Errorf("unexpected manifest: %+v", m)
	}
}

func TestGenerateRejectsInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runCLI(t, "generate", "--config", filepath.Join(dir, "none.yaml"),
		"--height", "0", "--image", filepath.Join(dir, "x.png"))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}

	_, _, err = runCLI(t, "generate", "--config", filepath.Join(dir, "none.yaml"),
		"--count", "1", "--image", filepath.Join(dir, "x.gif"), "--label", filepath.Join(dir, "y.png"))
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("expected INVALID_FORMAT, got %v", err)
	}
}

func TestGenerateStopsAtCapacity(t *testing.T) {
	dir := t.TempDir()
	logs, _, err := runCLI(t, "generate", "--config", filepath.Join(dir, "none.yaml"),
		"--count", "260", "--seed", "9",
		"--image", filepath.Join(dir, "i.png"), "--label", filepath.Join(dir, "l.png"),
		"--manifest", filepath.Join(dir, "m.yaml"))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.Contains(logs, "maximum number of cells reached") {
		t.Error("expected a capacity warning")
	}
	m, err := models.LoadManifest(filepath.Join(dir, "m.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if m.Issued != 255 {
		t.Errorf("issued %d ids, want 255", m.Issued)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syncell.yaml")

	if _, _, err := runCLI(t, "config", "init", path); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, _, err := runCLI(t, "config", "init", path); err == nil {
		t.Error("second init without --force should fail")
	}
	if _, _, err := runCLI(t, "config", "init", "--force", path); err != nil {
		t.Errorf("init --force failed: %v", err)
	}

	_, out, err := runCLI(t, "config", "show", path)
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{"canvas:", "height: 120", "minIntensity: 8500"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show output missing %q:\n%s", want, out)
		}
	}
}

func TestVersionFlag(t *testing.T) {
	SetVersion("1.4.0", "3f2c9ab", "2026-10-01")
	t.Cleanup(func() { SetVersion("dev", "", "") })

	_, out, err := runCLI(t, "--version")
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	for _, want := range []string{"syncell 1.4.0", "commit: 3f2c9ab", "built: 2026-10-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("version output %q does not contain %q", out, want)
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", errors.New(errors.ErrCodeInvalidInput, "bad size"), 2},
		{"invalid format", errors.New(errors.ErrCodeInvalidFormat, "bad yaml"), 2},
		{"capacity", errors.New(errors.ErrCodeCapacityExceeded, "full"), 3},
		{"internal", errors.New(errors.ErrCodeInternal, "encoder failed"), 1},
		{"uncoded", context.DeadlineExceeded, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}

	dir := t.TempDir()
	_, _, err := runCLI(t, "generate", "--config", filepath.Join(dir, "none.yaml"),
		"--height", "0", "--image", filepath.Join(dir, "x.png"))
	if got := ExitCode(err); got != 2 {
		t.Errorf("invalid generate settings exit code = %d, want 2 (err %v)", got, err)
	}
}
