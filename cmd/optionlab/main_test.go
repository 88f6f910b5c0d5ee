package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwaldner/optionlab/internal/logger"
	optionlab "github.com/jwaldner/optionlab/optionlab_lib"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := prepare(t, args...)
	err := rootCmd.Execute()
	return out.String(), err
}

func prepare(t *testing.T, args ...string) *bytes.Buffer {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("OPTIONLAB_CONFIG", filepath.Join(dir, "none.yaml"))
	t.Setenv("LOG_FILE", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	return &out
}

func TestPriceCommand(t *testing.T) {
	out, err := run(t, "price", "-s", "100", "-k", "100", "-d", "30", "-r", "1", "--vol", "20", "-t", "call")
	require.NoError(t, err)
	assert.Contains(t, out, "$2.33")
}

func TestPriceCommandDomainError(t *testing.T) {
	_, err := run(t, "price", "-s", "100", "-k", "100", "-d", "30", "-r", "1", "--vol", "0")
	assert.Error(t, err)
}

func TestExecuteLogsFailureOnce(t *testing.T) {
	hook := test.NewLocal(logger.Log)
	t.Cleanup(func() { logger.Log.ReplaceHooks(make(logrus.LevelHooks)) })

	out := prepare(t, "price", "-s", "100", "-k", "100", "-d", "30", "-r", "1", "--vol", "0")
	assert.Equal(t, 1, execute(context.Background()))
	assert.NotContains(t, out.String(), "Error:")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "command failed", entry.Message)
	assert.ErrorIs(t, entry.Data[logrus.ErrorKey].(error), optionlab.ErrDomain)
}

func TestIVCommand(t *testing.T) {
	out, err := run(t, "iv", "-s", "100", "-k", "100", "-d", "30", "-r", "1", "--price", "2.32752491", "-t", "call")
	require.NoError(t, err)
	assert.Contains(t, out, "implied volatility 20.000")
}

func TestSimulateCommandJSON(t *testing.T) {
	file := filepath.Join(t.TempDir(), "straddle.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"spot_price": 100, "volatility": 20, "rate": 1, "days_to_expiry": 30,
		"options": [
			{"strike": 100, "premium": 2.5, "option_type": "call", "position": 1},
			{"strike": 100, "premium": 2.4, "option_type": "put", "position": 1}
		]
	}`), 0o644))

	out, err := run(t, "simulate", "-f", file, "--json")
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "Unlimited", result["max_profit"])
	assert.InDelta(t, -4.9, result["max_loss"], 1e-9)
}

func TestSimulateCommandWritesCSVIntoDirectory(t *testing.T) {
	src := t.TempDir()
	file := filepath.Join(src, "spread.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
ticker: spy
spot_price: 100
volatility: 20
rate: 1
expiration: "2099-01-16"
options:
  - {strike: 100, premium: 5, option_type: call, position: long}
  - {strike: 110, premium: 2, option_type: call, position: short}
`), 0o644))
	exportDir := t.TempDir()

	out, err := run(t, "simulate", "-f", file, "--json=false", "--csv", exportDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Max profit: $7.00")

	matches, err := filepath.Glob(filepath.Join(exportDir, "*_SPY-spread_2099-01-16.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "price,payoff_at_expiry,current_pnl"))
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "chain.csv")
	outPath := filepath.Join(dir, "priced.csv")
	require.NoError(t, os.WriteFile(in, []byte(
		"symbol,option_type,strike,underlying,days_to_expiry,rate,volatility\n"+
			"C100,call,100,100,30,0.01,0.2\n"+
			"P100,put,100,100,30,0.01,0.2\n"), 0o644))

	_, err := run(t, "batch", "-f", in, "-o", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "C100,call,100,100,30,0.01,0.2,2.327"))
}
