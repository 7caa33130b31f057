package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"tidyup/internal/config"
	"tidyup/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Check names used by RunAll. Only SourceCheck is fatal to a run.
const (
	SourceCheck      = "Source directory"
	SourceWriteCheck = "Source write access"
	StateCheck       = "State directory"
	LogCheck         = "Log directory"
)

// RunAll executes the checks that apply to one run of source. The source
// directory is always checked first. Execute runs also check write access
// to the source and the state directory that holds the run lock.
func RunAll(cfg *config.Config, source string, dryRun bool) []Result {
	results := []Result{CheckSourceAccess(source)}
	if !dryRun && results[0].Passed {
		results = append(results, CheckSourceWritable(source))
	}
	if cfg == nil {
		return results
	}
	if cfg.History.Enabled || !dryRun {
		results = append(results, CheckDirectoryAccess(StateCheck, cfg.Paths.StateDir))
	}
	if cfg.Logging.File {
		results = append(results, CheckDirectoryAccess(LogCheck, cfg.Paths.LogDir))
	}
	return results
}

// CheckSourceAccess verifies that the directory to organize can be listed.
func CheckSourceAccess(path string) Result {
	return checkDirectory(SourceCheck, path, unix.R_OK|unix.X_OK, "read ok")
}

// CheckSourceWritable reports whether category folders can be created in
// path. A failure is advisory: the affected files fail individually.
func CheckSourceWritable(path string) Result {
	return checkDirectory(SourceWriteCheck, path, unix.W_OK, "write ok")
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
// A missing directory passes when its parent is writable, since it is
// created on first use.
func CheckDirectoryAccess(name, path string) Result {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (created on first use)", path)}
	}
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

func checkDirectory(name, path string, mode uint32, want string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, want)}
}

// Err converts a failed result into an enumeration error. Passing results
// return nil.
func (r Result) Err() error {
	if r.Passed {
		return nil
	}
	return services.Wrap(services.ErrEnumeration, "preflight", r.Name, r.Detail, nil)
}
