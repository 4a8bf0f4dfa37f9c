package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/mare/engine"
)

type initCLI struct {
	Level   string   `default:"info"`
	Pretty  bool     `default:"true"`
	Quiet   bool     `default:"false"`
	Define  []string `default:"a=1,b=2"`
	Default []string
	Empty   string

	Init Init `cmd:""`
}

func parseInit(t *testing.T, confPath string, args ...string) *kong.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(append([]string{"init"}, args...))
	if err != nil {
		t.Fatal(err)
	}

	return ktx
}

func TestInit(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "config")
	ktx := parseInit(t, confPath, "--level=debug")

	if err := (&Init{}).Run(WithContext(t.Context(), ktx)); err != nil {
		t.Fatalf("Init.Run(): %v", err)
	}

	c := new(engine.Collector)
	eng := engine.New(c)

	if !eng.Load(t.Context(), confPath) {
		t.Fatalf("load %s: %v", confPath, c.Diagnostics())
	}

	if !eng.EnterKey(ConfigKey, false) {
		t.Fatalf("%s has no key %q", confPath, ConfigKey)
	}

	want := map[string][]string{
		"level":  {"debug"},
		"pretty": {"true"},
		"quiet":  {"false"},
		"define": {"a=1", "b=2"},
	}

	keys := eng.Keys()
	if len(keys) != len(want) {
		t.Errorf("keys = %q, want %d keys", keys, len(want))
	}

	for key, words := range want {
		got, ok := eng.TextOf(key, false)
		if !ok {
			t.Errorf("missing key %q", key)

			continue
		}

		if len(got) != len(words) {
			t.Errorf("%s = %q, want %q", key, got, words)

			continue
		}

		for i := range words {
			if got[i] != words[i] {
				t.Errorf("%s = %q, want %q", key, got, words)
			}
		}
	}
}

func TestInit_Exists(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(confPath, []byte("existing"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx := WithContext(t.Context(), parseInit(t, confPath))

	err := (&Init{}).Run(ctx)
	if !errors.Is(err, ErrFileExists) {
		t.Fatalf("Init.Run() error = %v, want %v", err, ErrFileExists)
	}

	if !errors.Is(err, ErrWriteConfig) {
		t.Errorf("Init.Run() error = %v, want %v", err, ErrWriteConfig)
	}

	data, err := os.ReadFile(confPath)
	if err != nil || string(data) != "existing" {
		t.Fatalf("existing file changed: %q, %v", data, err)
	}

	if err := (&Init{Force: true}).Run(ctx); err != nil {
		t.Fatalf("Init.Run() with force: %v", err)
	}

	data, err = os.ReadFile(confPath)
	if err != nil || string(data) == "existing" {
		t.Errorf("file not overwritten: %q, %v", data, err)
	}
}
