package common

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type TestConfig struct {
	Results struct {
		Dir string `toml:"dir"`
	} `toml:"results"`
	Upstream struct {
		URL   string `toml:"url"`
		Image string `toml:"image"`
	} `toml:"upstream"`
}

var (
	globalConfig     *TestConfig
	globalConfigOnce sync.Once
	resultsDir       string
	resultsDirOnce   sync.Once
)

// LoadTestConfig reads tests/test_config.toml if present. Missing files keep defaults.
func LoadTestConfig() *TestConfig {
	globalConfigOnce.Do(func() {
		globalConfig = &TestConfig{}
		globalConfig.Results.Dir = "tests/results"
		globalConfig.Upstream.Image = "mccutchen/go-httpbin:v2.15.0"

		configPaths := []string{
			filepath.Join(FindProjectRoot(), "tests", "test_config.toml"),
			"test_config.toml",
		}

		for _, path := range configPaths {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			if err := toml.Unmarshal(data, globalConfig); err == nil {
				return
			}
		}
	})
	return globalConfig
}

func InitResultsDir() string {
	resultsDirOnce.Do(func() {
		baseDir := LoadTestConfig().Results.Dir
		if !filepath.IsAbs(baseDir) {
			baseDir = filepath.Join(FindProjectRoot(), baseDir)
		}

		timestamp := time.Now().Format("2006-01-02-15-04-05")
		resultsDir = filepath.Join(baseDir, timestamp)

		if err := os.MkdirAll(resultsDir, 0755); err != nil {
			panic("failed to create results dir: " + err.Error())
		}
	})
	return resultsDir
}

func GetResultsDir() string {
	if dir := os.Getenv("FREEAPIS_TEST_RESULTS_DIR"); dir != "" {
		if !filepath.IsAbs(dir) {
			if absDir, err := filepath.Abs(dir); err == nil {
				return absDir
			}
		}
		return dir
	}
	return InitResultsDir()
}

// GetUpstreamURL returns a manually started httpbin, or "" to use a container.
func GetUpstreamURL() string {
	if url := os.Getenv("FREEAPIS_TEST_UPSTREAM_URL"); url != "" {
		return url
	}
	return LoadTestConfig().Upstream.URL
}

func WriteResultsSummary(suite string, passed, failed, skipped int) {
	summaryPath := filepath.Join(GetResultsDir(), "summary.md")

	f, err := os.OpenFile(summaryPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	status := "PASS"
	if failed > 0 {
		status = "FAIL"
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	f.WriteString(fmt.Sprintf("# Test Results: %s\n\n", timestamp))
	f.WriteString(fmt.Sprintf("## %s\n", suite))
	f.WriteString(fmt.Sprintf("- Status: %s\n", status))
	f.WriteString(fmt.Sprintf("- Passed: %d\n", passed))
	f.WriteString(fmt.Sprintf("- Failed: %d\n", failed))
	f.WriteString(fmt.Sprintf("- Skipped: %d\n", skipped))
}

// FindProjectRoot walks up from the working directory to the go.mod.
func FindProjectRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}
