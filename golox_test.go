package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// conformanceCase is one scripted run of the full pipeline: a source string,
// the expected stdout and stderr, and whether the run should end with a
// static or a runtime error.
type conformanceCase struct {
	Name    string `yaml:"name"`
	Source  string `yaml:"source"`
	Output  string `yaml:"output"`
	Errors  string `yaml:"errors"`
	Static  bool   `yaml:"static"`
	Runtime bool   `yaml:"runtime"`
}

type conformanceSuite struct {
	Cases []conformanceCase `yaml:"cases"`
}

func TestConformance(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		file := file
		t.Run(filepath.Base(file), func(t *testing.T) {
			raw, err := os.ReadFile(file)
			require.NoError(t, err)

			var suite conformanceSuite
			require.NoError(t, yaml.Unmarshal(raw, &suite))
			require.NotEmpty(t, suite.Cases)

			for _, tc := range suite.Cases {
				tc := tc
				t.Run(tc.Name, func(t *testing.T) {
					var stdOut, stdErr bytes.Buffer
					hadError, hadRuntimeError := newRunner(&stdOut, &stdErr).run(tc.Source)

					assert.Equal(t, tc.Static, hadError, "static error flag")
					assert.Equal(t, tc.Runtime, hadRuntimeError, "runtime error flag")
					assert.Equal(t, tc.Output, stdOut.String(), "stdout")
					assert.Equal(t, tc.Errors, stdErr.String(), "stderr")
				})
			}
		})
	}
}

// Globals persist across runs on the same runner, the way the prompt feeds
// one line at a time.
func TestRunnerKeepsGlobalsBetweenRuns(t *testing.T) {
	var stdOut, stdErr bytes.Buffer
	r := newRunner(&stdOut, &stdErr)

	hadError, hadRuntimeError := r.run(`var greeting = "hello";`)
	require.False(t, hadError)
	require.False(t, hadRuntimeError)

	hadError, hadRuntimeError = r.run(`print greeting;`)
	require.False(t, hadError)
	require.False(t, hadRuntimeError)

	assert.Equal(t, "hello\n", stdOut.String())
	assert.Empty(t, stdErr.String())
}

// A failing line must not poison the next one.
func TestRunnerRecoversAfterError(t *testing.T) {
	var stdOut, stdErr bytes.Buffer
	r := newRunner(&stdOut, &stdErr)

	hadError, _ := r.run(`print missing;`)
	require.False(t, hadError)
	assert.Equal(t, "Undefined variable 'missing'.\n[line 1]\n", stdErr.String())

	stdErr.Reset()
	hadError, hadRuntimeError := r.run(`print "still here";`)
	require.False(t, hadError)
	require.False(t, hadRuntimeError)
	assert.Equal(t, "still here\n", stdOut.String())
}
