package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/notewise/internal/config"
	"github.com/cleared-dev/notewise/internal/rules"
)

func runNotewise(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestInit_CreatesFiles(t *testing.T) {
	dir := t.TempDir()
	out, err := runNotewise(t, "init", dir, "--name", "Test Biz")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized notewise engagement")

	for _, f := range []string{configFile, rulesFile, templateFile, ".env.example"} {
		_, err := os.Stat(filepath.Join(dir, f))
		require.NoError(t, err, "%s should exist", f)
	}
	info, err := os.Stat(filepath.Join(dir, "disclosures"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runNotewise(t, "init", dir, "--name", "My Company", "--business-type", "Manufacturing")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, configFile))
	require.NoError(t, err)
	assert.Equal(t, "My Company", cfg.Business.Name)
	assert.Equal(t, "Manufacturing", cfg.Business.Type)
	assert.Equal(t, rulesFile, cfg.Rules)
}

func TestInit_DefaultBusinessType(t *testing.T) {
	dir := t.TempDir()
	_, err := runNotewise(t, "init", dir, "--name", "Test Biz")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "type: Trading")
}

func TestInit_RulesAndTemplateLoad(t *testing.T) {
	dir := t.TempDir()
	_, err := runNotewise(t, "init", dir, "--name", "Test Biz")
	require.NoError(t, err)

	rs, err := rules.Load(filepath.Join(dir, rulesFile))
	require.NoError(t, err)
	assert.Equal(t, rules.Default(), rs)

	tmpl, err := config.LoadTemplate(filepath.Join(dir, templateFile))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultTemplate().Formulas, tmpl.Formulas)
}

func TestInit_RequiresName(t *testing.T) {
	_, err := runNotewise(t, "init", t.TempDir())
	require.Error(t, err, "init without --name should fail")
}

func TestInit_RefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := runNotewise(t, "init", dir, "--name", "First")
	require.NoError(t, err)

	_, err = runNotewise(t, "init", dir, "--name", "Second")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	cfg, err := config.Load(filepath.Join(dir, configFile))
	require.NoError(t, err)
	assert.Equal(t, "First", cfg.Business.Name)
}
