// Package preflight runs the environment checks behind the doctor command:
// directory access and external-service connectivity.
package preflight

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"craftpress/internal/config"
	"craftpress/internal/services"
)

// Result is the verdict for one check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
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
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckService probes one external-service client with a bounded timeout.
func CheckService(ctx context.Context, checker services.HealthChecker) Result {
	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := checker.HealthCheck(checkCtx); err != nil {
		return Result{Name: checker.Name(), Detail: err.Error()}
	}
	return Result{Name: checker.Name(), Passed: true, Detail: "reachable"}
}

// CheckAll runs directory checks for the configured paths followed by the
// supplied service probes.
func CheckAll(ctx context.Context, cfg *config.Config, checkers ...services.HealthChecker) []Result {
	results := []Result{
		CheckDirectoryAccess("files directory", cfg.Paths.FilesDir),
		CheckDirectoryAccess("data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("images directory", cfg.Paths.ImagesDir),
	}
	for _, checker := range checkers {
		results = append(results, CheckService(ctx, checker))
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
