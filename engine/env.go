package engine

import (
	"bufio"
	"maps"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

// The builtin environment of if conditions. Keys visible from the
// condition shadow these names.
//
//nolint:gochecknoglobals
var (
	builtinOnce sync.Once
	builtins    map[string]any
)

// makeEnvCache returns a copy of the builtin environment, which is built
// once per process.
func makeEnvCache() map[string]any {
	builtinOnce.Do(func() {
		builtins = map[string]any{
			"target":   hostTarget(),
			"platform": hostPlatform(),
			"hostname": hostName(),
			"user":     currentUser(),
			"shell":    loginShell(),
			"cwd":      workingDir,
			"file": map[string]any{
				"exists":    fileExists,
				"isDir":     fileIsDir,
				"isRegular": fileIsRegular,
				"isSymlink": fileIsSymlink,
			},
			"path": map[string]any{
				"abs":  pathAbs,
				"cat":  filepath.Join,
				"rel":  pathRel,
				"base": filepath.Base,
				"dir":  filepath.Dir,
				"ext":  filepath.Ext,
			},
			"mung": map[string]any{
				"prefix":   mungPrefix,
				"prefixif": mungPrefixIf,
			},
		}
	})

	return maps.Clone(builtins)
}

// target names an operating system and instruction set architecture.
type target struct {
	OS   string
	Arch string
}

// hostTarget returns the host using GNU toolchain naming, the names a
// Marefile typically passes to compilers.
func hostTarget() target {
	t := hostPlatform()

	switch t.Arch {
	case "386":
		t.Arch = "i386"
	case "amd64":
		t.Arch = "x86_64"
	case "arm":
		if v, ok := os.LookupEnv("GOARM"); ok {
			v, _, _ = strings.Cut(v, ",")
			if v = strings.TrimSpace(v); v >= "5" && v <= "7" && len(v) == 1 {
				t.Arch = "armv" + v
			}
		}
	case "arm64":
		if t.OS != "darwin" {
			t.Arch = "aarch64"
		}
	case "mipsle":
		t.Arch = "mipsel"
	}

	return t
}

// hostPlatform returns the host using Go naming, honoring GOHOSTOS,
// GOOS, GOHOSTARCH and GOARCH.
func hostPlatform() target {
	return target{
		OS:   firstEnv(runtime.GOOS, "GOHOSTOS", "GOOS"),
		Arch: firstEnv(runtime.GOARCH, "GOHOSTARCH", "GOARCH"),
	}
}

func firstEnv(fallback string, names ...string) string {
	for _, name := range names {
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
	}

	return fallback
}

func hostName() string {
	name, err := os.Hostname()
	if err != nil {
		return ""
	}

	return name
}

func currentUser() *user.User {
	u, err := user.Current()
	if err != nil {
		return nil
	}

	return u
}

// loginShell returns $SHELL, or the shell field of the user's passwd
// entry.
func loginShell() string {
	if shell, ok := os.LookupEnv("SHELL"); ok {
		return shell
	}

	u := currentUser()
	if u == nil || u.Username == "" {
		return ""
	}

	f, err := os.Open("/etc/passwd")
	if err != nil {
		return ""
	}
	defer f.Close()

	for s := bufio.NewScanner(f); s.Scan(); {
		if field := strings.Split(s.Text(), ":"); len(field) > 6 && field[0] == u.Username {
			return field[6]
		}
	}

	return ""
}

func workingDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return pathAbs(".")
	}

	return cwd
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return !os.IsNotExist(err)
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func fileIsRegular(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func fileIsSymlink(path string) bool {
	info, err := os.Lstat(path)

	return err == nil && info.Mode()&os.ModeSymlink != 0
}

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func pathRel(from, to string) string {
	p, err := filepath.Rel(pathAbs(from), pathAbs(to))
	if err != nil {
		return filepath.Join(from, to)
	}

	return p
}

// mungPrefix prepends items to the PATH-like list subject, removing
// duplicates.
func mungPrefix(subject string, items ...string) string {
	return mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(items...),
	).String()
}

// mungPrefixIf is like mungPrefix but keeps only elements accepted by
// keep.
func mungPrefixIf(subject string, keep func(string) bool, items ...string) string {
	return mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(items...),
		mung.WithFilter(keep),
	).String()
}

// buildProcessEnvMap converts "KEY=VALUE" entries to a map, reading
// os.Environ if envList is empty.
func buildProcessEnvMap(envList []string) map[string]string {
	if len(envList) == 0 {
		envList = os.Environ()
	}

	m := make(map[string]string, len(envList))

	for _, kv := range envList {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}

	return m
}

// envFunc returns the env(name) builtin.
func envFunc(vars map[string]string) func(string) string {
	return func(name string) string { return vars[name] }
}
