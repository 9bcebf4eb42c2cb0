package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/resgateio/resgate/logger"
	"github.com/mcncl/json2xml/internal/config"
	"github.com/mcncl/json2xml/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetCLI restores the CLI flags and output writers after a test.
func resetCLI(t *testing.T) *bytes.Buffer {
	t.Helper()
	originalCLI := CLI
	originalStdout, originalStderr := stdout, stderr
	t.Cleanup(func() {
		CLI = originalCLI
		stdout, stderr = originalStdout, originalStderr
	})

	var out bytes.Buffer
	stdout = &out
	stderr = &bytes.Buffer{}
	return &out
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRun_SimpleJSON(t *testing.T) {
	out := resetCLI(t)
	CLI.Input = writeTemp(t, "input.json", []byte(`{"name": "Ada", "age": 36}`))

	err := run(&Context{Config: config.NewConfig()})
	require.NoError(t, err)
	assert.Equal(t, "<root><name>Ada</name><age>36</age></root>\n", out.String())
}

func TestRun_WithOutputFile(t *testing.T) {
	resetCLI(t)
	CLI.Input = writeTemp(t, "input.json", []byte(`{"tags": ["a", "b"]}`))
	CLI.Output = filepath.Join(t.TempDir(), "output.xml")

	cfg := config.NewConfig()
	cfg.RootElement = "doc"
	err := run(&Context{Config: cfg})
	require.NoError(t, err)

	content, err := os.ReadFile(CLI.Output)
	require.NoError(t, err)
	assert.Equal(t, "<doc><tags>a</tags><tags>b</tags></doc>", string(content))
}

func TestRun_PrettyPrinted(t *testing.T) {
	out := resetCLI(t)
	CLI.Input = writeTemp(t, "input.json", []byte(`{"user": {"id": 1}}`))

	cfg := config.NewConfig()
	cfg.Output.Indent = "  "
	cfg.Output.Declaration = true
	err := run(&Context{Config: cfg})
	require.NoError(t, err)

	expected := `<?xml version="1.0" encoding="UTF-8"?>
<root>
  <user>
    <id>1</id>
  </user>
</root>
`
	assert.Equal(t, expected, out.String())
}

func TestRun_FromStdin(t *testing.T) {
	out := resetCLI(t)
	originalStdin := os.Stdin
	defer func() { os.Stdin = originalStdin }()

	CLI.Input = ""

	// Create a pipe to simulate stdin
	r, w, err := os.Pipe()
	require.NoError(t, err)
	go func() {
		defer func() { _ = w.Close() }()
		_, _ = w.WriteString(`[{"item": "apple"}, {"item": "banana"}]`)
	}()
	os.Stdin = r
	defer func() { _ = r.Close() }()

	err = run(&Context{Config: config.NewConfig()})
	require.NoError(t, err)
	assert.Equal(t,
		"<root><array><item>apple</item></array><array><item>banana</item></array></root>\n",
		out.String())
}

func TestRun_Charset(t *testing.T) {
	latin1 := []byte("{\"name\": \"caf\xe9\"}")

	t.Run("from config", func(t *testing.T) {
		out := resetCLI(t)
		CLI.Input = writeTemp(t, "latin1.json", latin1)

		cfg := config.NewConfig()
		cfg.Input.Charset = "iso-8859-1"
		require.NoError(t, run(&Context{Config: cfg}))
		assert.Equal(t, "<root><name>café</name></root>\n", out.String())
	})

	t.Run("from content type", func(t *testing.T) {
		out := resetCLI(t)
		CLI.Input = writeTemp(t, "latin1.json", latin1)
		CLI.ContentType = "application/json; charset=ISO-8859-1"

		require.NoError(t, run(&Context{Config: config.NewConfig()}))
		assert.Equal(t, "<root><name>café</name></root>\n", out.String())
	})

	t.Run("unknown charset", func(t *testing.T) {
		resetCLI(t)
		CLI.Input = writeTemp(t, "latin1.json", latin1)

		cfg := config.NewConfig()
		cfg.Input.Charset = "no-such-charset"
		err := run(&Context{Config: cfg})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrUnknownCharset)
	})
}

func TestRun_MaxSize(t *testing.T) {
	resetCLI(t)
	CLI.Input = writeTemp(t, "input.json", []byte(`{"a": "0123456789"}`))

	cfg := config.NewConfig()
	cfg.Input.MaxSize = 8
	err := run(&Context{Config: cfg})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInputTooLarge)
	assert.Equal(t, errors.ErrorTypeInput, errors.TypeOf(err))
}

func TestRun_Check(t *testing.T) {
	out := resetCLI(t)
	CLI.Input = writeTemp(t, "input.json", []byte(`{"a": [1, {"b": null}], "a": 2}`))
	CLI.Check = true

	err := run(&Context{Config: config.NewConfig(), Debug: true})
	require.NoError(t, err)
	assert.Equal(t,
		"OK: depth=3 objects=2 arrays=1 scalars=2 nulls=1 members=2 accumulated=1 invalid_names=0\n",
		out.String())
}

func TestRun_CheckRejectsInvalidNames(t *testing.T) {
	out := resetCLI(t)
	CLI.Input = writeTemp(t, "input.json", []byte(`{"has space": 1}`))
	CLI.Check = true

	err := run(&Context{Config: config.NewConfig()})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeSerialization, errors.TypeOf(err))
	assert.Empty(t, out.String())
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxDepth int
		kind     errors.ErrorType
	}{
		{name: "invalid json", input: `{"name": "Ada",}`, kind: errors.ErrorTypeSyntax},
		{name: "not json", input: `not json`, kind: errors.ErrorTypeLexical},
		{name: "too deep", input: `[[[1]]]`, maxDepth: 2, kind: errors.ErrorTypeDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := resetCLI(t)
			CLI.Input = writeTemp(t, "input.json", []byte(tt.input))

			cfg := config.NewConfig()
			if tt.maxDepth > 0 {
				cfg.MaxDepth = tt.maxDepth
			}
			err := run(&Context{Config: cfg, Debug: true})
			require.Error(t, err)
			assert.Equal(t, tt.kind, errors.TypeOf(err))
			assert.Contains(t, err.Error(), "Unable to transform JSON into XML: ")
			assert.Empty(t, out.String(), "no partial output")
		})
	}
}

func TestReadInput_EmptyFile(t *testing.T) {
	resetCLI(t)
	CLI.Input = writeTemp(t, "empty.json", nil)

	_, err := readInput()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFileEmpty)
}

func TestReadInput_NonExistentFile(t *testing.T) {
	resetCLI(t)
	CLI.Input = "/non/existent/file.json"

	_, err := readInput()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFileNotFound)
}

func TestWriteOutput_ToStdout(t *testing.T) {
	out := resetCLI(t)
	CLI.Output = ""

	require.NoError(t, writeOutput("<root></root>\n"))
	assert.Equal(t, "<root></root>\n", out.String())
}

func TestWriteOutput_FileError(t *testing.T) {
	resetCLI(t)
	CLI.Output = "/non/existent/dir/output.xml"

	err := writeOutput("<root></root>")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeOutput, errors.TypeOf(err))
}

func TestLoadConfig_Precedence(t *testing.T) {
	resetCLI(t)
	CLI.Config = writeTemp(t, "json2xml.yml", []byte("root_element: fromfile\nmax_depth: 20\n"))
	CLI.MaxDepth = 5
	t.Setenv(config.EnvRootElement, "fromenv")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "fromenv", cfg.RootElement)
	assert.Equal(t, 5, cfg.MaxDepth)
}

func TestLoadConfig_Invalid(t *testing.T) {
	resetCLI(t)
	CLI.Config = writeTemp(t, "json2xml.yml", []byte("root_element: \"1 bad\"\n"))

	_, err := loadConfig()
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeConfig, errors.TypeOf(err))
	assert.True(t, strings.HasPrefix(errors.UserFriendlyError(err), "Configuration error: failed to load configuration"))
}

func TestRun_SampleGolden(t *testing.T) {
	out := resetCLI(t)
	CLI.Input = filepath.Join("testdata", "samples", "user.json")

	cfg := config.NewConfig()
	cfg.RootElement = "user_data"
	require.NoError(t, run(&Context{Config: cfg}))

	golden, err := os.ReadFile(filepath.Join("testdata", "samples", "user.xml"))
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(string(golden)), strings.TrimSpace(out.String()))
}

func TestNewLogger(t *testing.T) {
	l, ok := newLogger(true).(*logger.StdLogger)
	require.True(t, ok)
	assert.NotNil(t, l)

	// A nil logger on the context falls back to one gated by Debug.
	resetCLI(t)
	CLI.Input = writeTemp(t, "input.json", []byte(`{"a": 1}`))
	ctx := &Context{Config: config.NewConfig()}
	require.NoError(t, run(ctx))
	assert.NotNil(t, ctx.Logger)
}
