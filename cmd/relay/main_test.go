package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloController = `package controllers

import "github.com/toyz/relay/pkg/relay"

//relay::controller -Path=/hello
type HelloController struct{}

//relay::route /greet -Params=name
func (c *HelloController) Greet(resp relay.Response, name string) {}
`

func newModule(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"go.mod":               "module example.com/app\n\ngo 1.25\n",
		"controllers/hello.go": helloController,
		"models/user.go":       "package models\n\ntype User struct{}\n\ntype Role int\n",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestHelp(t *testing.T) {
	code, _, stderr := runCLI("-help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "Usage: relay")
	assert.Contains(t, stderr, "-clean")
	assert.Contains(t, stderr, "-scan")
	assert.Contains(t, stderr, "directory-paths")
}

func TestNoArguments(t *testing.T) {
	code, _, stderr := runCLI()
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "at least one directory path is required")
}

func TestUnknownFlag(t *testing.T) {
	code, _, _ := runCLI("-bogus")
	assert.Equal(t, 2, code)
}

func TestGenerateAndClean(t *testing.T) {
	root := newModule(t)
	generated := filepath.Join(root, "controllers", "autogen_components.go")

	code, stdout, stderr := runCLI(root + "/...")
	require.Equal(t, 0, code, stderr)
	assert.FileExists(t, generated)
	assert.NoFileExists(t, filepath.Join(root, "models", "autogen_components.go"))
	assert.Contains(t, stdout, "Relay: Generation complete!")
	assert.Contains(t, stdout, "routes: 1")

	code, stdout, stderr = runCLI("-clean", root+"/...")
	require.Equal(t, 0, code, stderr)
	assert.NoFileExists(t, generated)
	assert.Contains(t, stdout, "removed: 1")
}

func TestQuiet(t *testing.T) {
	root := newModule(t)
	code, stdout, _ := runCLI("-quiet", root+"/...")
	require.Equal(t, 0, code)
	assert.Empty(t, stdout)
}

func TestGenerateReportsErrors(t *testing.T) {
	root := newModule(t)
	bad := "package controllers\n\n//relay::controller -Path=hello\ntype Bad struct{}\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "controllers", "bad.go"), []byte(bad), 0o644))

	code, _, stderr := runCLI(root + "/...")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "ValidationError")
	assert.Contains(t, stderr, "bad.go:3")
	assert.NoFileExists(t, filepath.Join(root, "controllers", "autogen_components.go"))
}

func TestScan(t *testing.T) {
	root := newModule(t)

	code, stdout, stderr := runCLI("-scan", "models", root)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "example.com/app/models.User\nexample.com/app/models.Role\n", stdout)

	code, _, stderr = runCLI("-scan", "missing", root)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "missing")
}
