package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBankOFX = `OFXHEADER:100
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
<TRNTYPE>DIRECTDEBIT
<DTPOSTED>20240310120000[0:GMT]
<TRNAMT>-59.00
<FITID>2024031001
<NAME>Direct Debit Optus Mobile Services
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240318120000[0:GMT]
<TRNAMT>-89.95
<FITID>2024031801
<NAME>EFTPOS
<MEMO>Officeworks Richmond
</STMTTRN>
<STMTTRN>
<TRNTYPE>INT
<DTPOSTED>20240331120000[0:GMT]
<TRNAMT>1.23
<FITID>2024033101
<NAME>Interest Credit
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

const sampleCreditCardOFX = `OFXHEADER:100
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
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>AUD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301120000[0:GMT]
<DTEND>20240331120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240312120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024031201
<NAME>AMAZON MKTPLC AU SYDNEY
</STMTTRN>
<STMTTRN>
<TRNTYPE>FEE
<DTPOSTED>20240331120000[0:GMT]
<TRNAMT>-3.00
<FITID>CC2024033101
<NAME>International Transaction Fee
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240331120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			expectedCount: 4,
		},
		{
			name:          "valid credit card statement",
			ofxData:       sampleCreditCardOFX,
			expectedCount: 2,
		},
		{
			name:          "leading blank lines",
			ofxData:       "\n\n  " + sampleCreditCardOFX,
			expectedCount: 2,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser()

			transactions, err := parser.ParseFile(context.Background(), strings.NewReader(tt.ofxData))

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, transactions, tt.expectedCount)
		})
	}
}

func TestParseBankTransactions(t *testing.T) {
	parser := NewParser()

	transactions, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, transactions, 4)

	fuel := transactions[0]
	assert.Equal(t, "2024030501", fuel.ID)
	assert.Equal(t, "Debit Card Purchase Shell Coles Express", fuel.Description)
	assert.Equal(t, "062000123456", fuel.AccountID)
	require.True(t, fuel.Amount.Valid)
	assert.True(t, fuel.Amount.Decimal.Equal(decimal.RequireFromString("-45.50")))
	assert.True(t, fuel.IsExpense())
	assert.Empty(t, fuel.Category)
	assert.Equal(t, 2024, fuel.Date.Year())
	assert.Equal(t, time.March, fuel.Date.Month())
	assert.Equal(t, 5, fuel.Date.Day())
	assert.NotEmpty(t, fuel.Hash)

	phone := transactions[1]
	assert.Equal(t, "Direct Debit Optus Mobile Services", phone.Description)
	assert.True(t, phone.Amount.Decimal.Equal(decimal.RequireFromString("-59")))

	// A generic NAME falls back to MEMO.
	office := transactions[2]
	assert.Equal(t, "Officeworks Richmond", office.Description)

	interest := transactions[3]
	assert.Equal(t, "Interest", interest.Category)
	assert.True(t, interest.IsIncome())
	assert.True(t, interest.Amount.Decimal.Equal(decimal.RequireFromString("1.23")))
}

func TestParseCreditCardTransactions(t *testing.T) {
	parser := NewParser()

	transactions, err := parser.ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	amazon := transactions[0]
	assert.Equal(t, "CC2024031201", amazon.ID)
	assert.Equal(t, "AMAZON MKTPLC AU SYDNEY", amazon.Description)
	assert.Equal(t, "4111111111111111", amazon.AccountID)
	assert.True(t, amazon.Amount.Decimal.Equal(decimal.RequireFromString("-45.99")))

	fee := transactions[1]
	assert.Equal(t, "Bank Fees", fee.Category)
	assert.True(t, fee.Amount.Decimal.Equal(decimal.RequireFromString("-3")))
}

func TestParseFile_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().ParseFile(ctx, strings.NewReader(sampleBankOFX))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{
			name:     "name kept raw",
			tx:       ofxgo.Transaction{Name: "Debit Card Purchase Shell Coles Express"},
			expected: "Debit Card Purchase Shell Coles Express",
		},
		{
			name:     "trim whitespace",
			tx:       ofxgo.Transaction{Name: "  Bunnings Warehouse  "},
			expected: "Bunnings Warehouse",
		},
		{
			name:     "generic name uses memo",
			tx:       ofxgo.Transaction{Name: "purchase", Memo: "Jb Hi Fi Melbourne"},
			expected: "Jb Hi Fi Melbourne",
		},
		{
			name:     "generic name without memo",
			tx:       ofxgo.Transaction{Name: "DEBIT"},
			expected: "DEBIT",
		},
		{
			name:     "payee when name missing",
			tx:       ofxgo.Transaction{Payee: &ofxgo.Payee{Name: "Telstra"}},
			expected: "Telstra",
		},
		{
			name:     "nothing usable",
			tx:       ofxgo.Transaction{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, describe(tt.tx))
		})
	}
}

func TestConvertTransaction_Hash(t *testing.T) {
	parser := NewParser()
	date := ofxgo.Date{Time: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)}

	first := ofxgo.Transaction{FiTID: "A1", DtPosted: date, Name: "Coles 0423"}
	first.TrnAmt.SetFrac64(-2550, 100)
	second := first
	second.FiTID = "B2"

	tx1, err := parser.convertTransaction(first, "123")
	require.NoError(t, err)
	tx2, err := parser.convertTransaction(second, "123")
	require.NoError(t, err)

	// Hashes ignore the bank's transaction ID so re-exports deduplicate.
	assert.Equal(t, tx1.Hash, tx2.Hash)
	assert.NotEqual(t, tx1.ID, tx2.ID)

	other, err := parser.convertTransaction(first, "456")
	require.NoError(t, err)
	assert.NotEqual(t, tx1.Hash, other.Hash)

	missingID := first
	missingID.FiTID = ""
	generated, err := parser.convertTransaction(missingID, "123")
	require.NoError(t, err)
	assert.NotEmpty(t, generated.ID)

	_, err = parser.convertTransaction(ofxgo.Transaction{DtPosted: date}, "123")
	assert.Error(t, err)
}

func TestGetAccounts(t *testing.T) {
	parser := NewParser()

	accounts, err := parser.GetAccounts(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"062000123456"}, accounts)

	accounts, err = parser.GetAccounts(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"4111111111111111"}, accounts)
}
