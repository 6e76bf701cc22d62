package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/deductible/internal/cache"
	"github.com/Veraticus/deductible/internal/common"
	"github.com/Veraticus/deductible/internal/engine"
	"github.com/Veraticus/deductible/internal/model"
	"github.com/Veraticus/deductible/internal/reference"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240415120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>AUD
<BANKACCTFROM>
<BANKID>062000
<ACCTID>062000123456
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301120000[0:GMT]
<DTEND>20240331120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240305120000[0:GMT]
<TRNAMT>-45.50
<FITID>2024030501
<NAME>Debit Card Purchase Shell Coles Express
</STMTTRN>
<STMTTRN>
<TRNTYPE>ATM
<DTPOSTED>20240306120000[0:GMT]
<TRNAMT>-100.00
<FITID>2024030601
<NAME>ATM Withdrawal Cba Sydney
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240331120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseToggles(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected model.DeductionToggleState
		wantErr  bool
	}{
		{
			name:     "no flags",
			values:   nil,
			expected: nil,
		},
		{
			name:     "plain name enables",
			values:   []string{reference.CategoryHomeOffice},
			expected: model.DeductionToggleState{reference.CategoryHomeOffice: true},
		},
		{
			name:     "name containing comma",
			values:   []string{reference.CategoryVehicles + "=on"},
			expected: model.DeductionToggleState{reference.CategoryVehicles: true},
		},
		{
			name:     "explicit disable",
			values:   []string{reference.CategoryHomeOffice + "=false"},
			expected: model.DeductionToggleState{reference.CategoryHomeOffice: false},
		},
		{
			name:    "unknown category",
			values:  []string{"Yachts"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseToggles(tt.values)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrUnknownCategory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseSwitch(t *testing.T) {
	for _, v := range []string{"on", "ON", "enable", "true", "1"} {
		got, err := parseSwitch(v)
		require.NoError(t, err, v)
		assert.True(t, got, v)
	}
	for _, v := range []string{"off", "disabled", "false", "0"} {
		got, err := parseSwitch(v)
		require.NoError(t, err, v)
		assert.False(t, got, v)
	}
	_, err := parseSwitch("maybe")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestReadDescriptions(t *testing.T) {
	input := "Uber Trip\n\n# exported 2024-03-31\n  Coles 0423  \nATM Withdrawal\n"

	items, err := readDescriptions(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Uber Trip", items[0].Description)
	assert.Equal(t, "Coles 0423", items[1].Description)
	assert.False(t, items[1].Amount.Valid)
}

func TestReadBulkInput(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	statement := filepath.Join(dir, "march.qfx")
	require.NoError(t, os.WriteFile(statement, []byte(testOFX), 0600))

	items, err := readBulkInput(ctx, nil, statement, false, "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "2024030501", items[0].ID)
	assert.True(t, items[0].Amount.Valid)
	assert.Equal(t, "Cash & ATM", items[1].Category)

	// --ofx forces the parser regardless of extension.
	renamed := filepath.Join(dir, "march.txt")
	require.NoError(t, os.WriteFile(renamed, []byte(testOFX), 0600))
	items, err = readBulkInput(ctx, nil, renamed, true, "")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = readBulkInput(ctx, strings.NewReader("Uber Trip\nTelstra\n"), "-", false, "")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = readBulkInput(ctx, nil, filepath.Join(dir, "missing.txt"), false, "")
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.ofx")
	require.NoError(t, os.WriteFile(broken, []byte("not ofx"), 0600))
	_, err = readBulkInput(ctx, nil, broken, false, "")
	var userErr *common.UserError
	assert.ErrorAs(t, err, &userErr)
}

func TestReadBulkInput_AccountFilter(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	statement := filepath.Join(dir, "march.ofx")
	require.NoError(t, os.WriteFile(statement, []byte(testOFX), 0600))

	items, err := readBulkInput(ctx, nil, statement, false, "062000123456")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = readBulkInput(ctx, nil, statement, false, "999")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, "062000123456")

	_, err = readBulkInput(ctx, strings.NewReader("Uber Trip\n"), "-", false, "062000123456")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestClassifyChunks(t *testing.T) {
	eng := engine.New(cache.New(cache.DefaultTTL, cache.DefaultCapacity), engine.DefaultConfig())
	overrides := engine.Overrides{Toggles: model.DeductionToggleState{reference.CategoryVehicles: true}}

	items := make([]engine.Item, 0, 7)
	for i := 0; i < 6; i++ {
		items = append(items, engine.Item{Description: "Uber Trip"})
	}
	items = append(items, engine.Item{Description: "ATM Withdrawal"})

	var progress []int
	run, err := classifyChunks(context.Background(), eng, items, overrides, 3, func(done int) {
		progress = append(progress, done)
	})
	require.NoError(t, err)

	assert.Equal(t, []int{3, 3, 1}, progress)
	assert.Len(t, run.batches, 3)
	assert.Len(t, run.ordered, 7)
	assert.Len(t, run.results, 2)
	assert.Equal(t, 7, run.stats.TotalProcessed)
	// Only the first Uber Trip and the ATM line miss the cache.
	assert.Equal(t, 5, run.stats.CacheHits)
	assert.Equal(t, 6, run.stats.DeductibleCount)

	var buf bytes.Buffer
	require.NoError(t, writeBulkJSON(&buf, run))
	assert.Contains(t, buf.String(), `"Uber Trip"`)
	assert.Contains(t, buf.String(), `"totalProcessed": 7`)
}

func TestLLMConfigFromViper(t *testing.T) {
	t.Cleanup(func() {
		viper.Set("llm.provider", nil)
		viper.Set("llm.api_key", nil)
	})

	viper.Set("llm.provider", "Anthropic")
	viper.Set("llm.api_key", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	cfg, err := llmConfigFromViper()
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "sk-ant-test", cfg.APIKey)

	t.Setenv("OPENAI_API_KEY", "")
	viper.Set("llm.provider", "openai")
	_, err = llmConfigFromViper()
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	viper.Set("llm.provider", "ollama")
	_, err = llmConfigFromViper()
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestStartCacheSweeper(t *testing.T) {
	eng := engine.New(nil, engine.DefaultConfig())

	_, err := startCacheSweeper(eng, "not a schedule", slogDiscard())
	assert.Error(t, err)

	c, err := startCacheSweeper(eng, "@every 1h", slogDiscard())
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}

func TestCommands_TogglesAndOverrides(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "deduct.db")

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs(append(args, "--db", dbPath, "--user", "tester", "--log-level", "error"))
		require.NoError(t, rootCmd.ExecuteContext(context.Background()), out.String())
		return out.String()
	}

	run("toggles", "init", reference.CategoryVehicles)
	out := run("toggles", "list")
	assert.Contains(t, out, reference.CategoryVehicles)
	assert.Contains(t, out, reference.CategoryHomeOffice)

	run("overrides", "set", "tx-1", "true")
	run("overrides", "category", "tx-2", reference.CategoryHomeOffice)
	out = run("overrides", "list")
	assert.Contains(t, out, "tx-1")
	assert.Contains(t, out, reference.CategoryHomeOffice)

	run("overrides", "clear", "tx-1")
	out = run("overrides", "list")
	assert.NotContains(t, out, "tx-1")

	out = run("classify", "Debit Card Purchase Shell Coles Express", "--amount", "-45.50", "--json")
	assert.Contains(t, out, `"isBusinessExpense": true`)
	assert.Contains(t, out, `"deductionAmount": "45.5"`)

	out = run("version")
	assert.Contains(t, out, "deduct")
}
