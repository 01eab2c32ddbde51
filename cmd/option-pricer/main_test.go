package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-pricer/internal/pricing"
)

const examples = `kind,spot,strike,rate,volatility,maturity,quantity
call,1.0,0.9,0.015,0.2,1,1
put,1.0,0.9,0.015,0.2,1,1
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func writeExamples(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contracts.csv")
	require.NoError(t, os.WriteFile(path, []byte(examples), 0o644))
	return path
}

func TestSelfCheckCommand(t *testing.T) {
	out, err := run(t, "", "selfcheck", "--verbosity", "0")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ok "), out)

	_, err = run(t, "", "selfcheck", "--verbosity", "0", "--formula", "canonical")
	assert.ErrorIs(t, err, pricing.ErrRegression)
}

func TestPriceCommand(t *testing.T) {
	out, err := run(t, "", "price", "--verbosity", "0",
		"--type", "call", "--spot", "1", "--strike", "0.9", "--rate", "0.015", "--vol", "0.2", "--maturity", "1")
	require.NoError(t, err)
	assert.Equal(t, "0.14498531543284654\n", out)

	_, err = run(t, "", "price", "--verbosity", "0",
		"--type", "call", "--spot", "1", "--strike", "0.9", "--vol", "0", "--maturity", "1")
	assert.ErrorIs(t, err, pricing.ErrDomain)

	_, err = run(t, "", "price", "--verbosity", "0", "--type", "straddle")
	assert.ErrorIs(t, err, pricing.ErrUnknownOptionType)
}

func TestBatchCommandPrintsLastRow(t *testing.T) {
	out, err := run(t, "", "batch", "--verbosity", "0", writeExamples(t))
	require.NoError(t, err)
	assert.Equal(t, "0.37221239391036487\n", out)
}

func TestBatchCommandAllRowsFromStdin(t *testing.T) {
	out, err := run(t, examples, "batch", "--verbosity", "0", "--all", "--precision", "4", "-")
	require.NoError(t, err)
	assert.Equal(t, "1\tcall\t0.1450\n2\tput\t0.3722\n", out)
}

func TestBatchCommandNoHeaderAndOutFile(t *testing.T) {
	body := strings.SplitN(examples, "\n", 2)[1]
	dst := filepath.Join(t.TempDir(), "report.csv")

	_, err := run(t, body, "batch", "--verbosity", "0", "--no-header", "--format", "csv", "-o", dst, "-")
	require.NoError(t, err)

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[2], ",0.37221239391036487"), lines[2])
}

func TestBatchCommandErrors(t *testing.T) {
	_, err := run(t, "", "batch", "--verbosity", "0", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = run(t, "kind,spot,strike,rate,volatility,maturity,quantity\n", "batch", "--verbosity", "0", "-")
	assert.Error(t, err)

	_, err = run(t, "", "batch", "--verbosity", "0", "--format", "xml", writeExamples(t))
	assert.Error(t, err)
}

func TestPriceCommandTickerFromSpotsFile(t *testing.T) {
	t.Setenv("MASSIVE_API_KEY", "")
	t.Setenv("POLYGON_API_KEY", "")

	spots := filepath.Join(t.TempDir(), "spots.csv")
	require.NoError(t, os.WriteFile(spots, []byte("ticker,spot\nREF,1.0\n"), 0o644))

	out, err := run(t, "", "price", "--verbosity", "0", "--spots-file", spots, "--ticker", "ref",
		"--type", "put", "--strike", "0.9", "--rate", "0.015", "--vol", "0.2", "--maturity", "1")
	require.NoError(t, err)
	assert.Equal(t, "0.37221239391036487\n", out)

	_, err = run(t, "", "price", "--verbosity", "0", "--ticker", "ref",
		"--type", "put", "--strike", "0.9", "--vol", "0.2", "--maturity", "1")
	assert.Error(t, err)
}
