package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/exascience/parbench"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Workers != 0 || c.Mode != "cpu" || c.Schedule != "dynamic" || c.Seed != 42 {
		t.Errorf("unexpected defaults %+v", c)
	}
	if c.Tolerance != 1e-6 {
		t.Errorf("tolerance %v", c.Tolerance)
	}
	if c.Images.Count != 4 || c.Vectors.Rounds != 20 || c.Fall.Step != 0.001 || c.Fall.MaxTime != 100 {
		t.Errorf("unexpected exercise defaults %+v", c)
	}
	if !reflect.DeepEqual(c.SearchTargets(), DefaultTargets) {
		t.Errorf("targets %v", c.SearchTargets())
	}
	if c.Log.Mode != "console" {
		t.Errorf("log mode %q", c.Log.Mode)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("PARBENCH_IMAGES_DIR", "/tmp/gray")
	path := filepath.Join(t.TempDir(), "parbench.yaml")
	content := `Workers: 3
Mode: io
Schedule: static
ItemTimeout: 2s
Images:
  Count: 2
  OutputDir: ${PARBENCH_IMAGES_DIR}
Search:
  Targets: [7, 8]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Workers != 3 || c.ItemTimeout != 2*time.Second || c.Images.Count != 2 || c.Images.Width != 512 {
		t.Errorf("unexpected configuration %+v", c)
	}
	if c.Images.OutputDir != "/tmp/gray" {
		t.Errorf("output dir %q", c.Images.OutputDir)
	}
	if !reflect.DeepEqual(c.SearchTargets(), []int{7, 8}) {
		t.Errorf("targets %v", c.SearchTargets())
	}
	pool, err := c.Pool()
	if err != nil {
		t.Fatal(err)
	}
	if pool.Workers != 3 || pool.Mode != parbench.IOBound || pool.Schedule != parbench.Static || pool.ItemTimeout != 2*time.Second {
		t.Errorf("unexpected pool configuration %+v", pool)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"mode.json":    `{"Mode": "gpu"}`,
		"workers.json": `{"Workers": -2}`,
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestPoolInvalid(t *testing.T) {
	c := Default()
	c.Schedule = "random"
	if _, err := c.Pool(); err == nil {
		t.Error("expected an error for an unknown schedule")
	}
}
