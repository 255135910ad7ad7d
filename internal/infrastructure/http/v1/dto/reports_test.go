package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/types"
)

func reportBody(balances, nitip string) string {
	return `{"store_id":"` + id.New().String() + `","report_date":"2024-05-01","balances":` + balances +
		`,"uang_nitip":` + nitip + `}`
}

func TestReportRequest_Amounts(t *testing.T) {
	bank := id.New().String()

	tests := []struct {
		name      string
		body      string
		wantErr   bool
		nilSaldo  bool
		nilNitip  bool
		wantSaldo string
		wantNitip string
	}{
		{
			name:      "numbers",
			body:      reportBody(`[{"bank_id":"`+bank+`","saldo":1000.5}]`, `200`),
			wantSaldo: "1000.5",
			wantNitip: "200",
		},
		{
			name:      "negative uang nitip",
			body:      reportBody(`[{"bank_id":"`+bank+`","saldo":0}]`, `-75`),
			wantSaldo: "0",
			wantNitip: "-75",
		},
		{
			name:      "missing saldo",
			body:      reportBody(`[{"bank_id":"`+bank+`"}]`, `200`),
			nilSaldo:  true,
			wantNitip: "200",
		},
		{
			name:      "null saldo",
			body:      reportBody(`[{"bank_id":"`+bank+`","saldo":null}]`, `200`),
			nilSaldo:  true,
			wantNitip: "200",
		},
		{
			name:      "null uang nitip",
			body:      reportBody(`[{"bank_id":"`+bank+`","saldo":1}]`, `null`),
			nilNitip:  true,
			wantSaldo: "1",
		},
		{
			name:    "quoted saldo",
			body:    reportBody(`[{"bank_id":"`+bank+`","saldo":"1000"}]`, `200`),
			wantErr: true,
		},
		{
			name:    "quoted uang nitip",
			body:    reportBody(`[{"bank_id":"`+bank+`","saldo":1000}]`, `"200"`),
			wantErr: true,
		},
		{
			name:    "boolean saldo",
			body:    reportBody(`[{"bank_id":"`+bank+`","saldo":true}]`, `200`),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ReportRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			in := req.ToInput()
			require.Len(t, in.Balances, 1)
			if tt.nilSaldo {
				assert.Nil(t, in.Balances[0].Saldo)
			} else {
				require.NotNil(t, in.Balances[0].Saldo)
				assert.True(t, types.MustMoney(tt.wantSaldo).Equal(*in.Balances[0].Saldo))
			}
			if tt.nilNitip {
				assert.Nil(t, in.UangNitip)
			} else {
				require.NotNil(t, in.UangNitip)
				assert.True(t, types.MustMoney(tt.wantNitip).Equal(*in.UangNitip))
			}
		})
	}
}

func TestReportRequest_QuotedAmountMessage(t *testing.T) {
	var req ReportRequest
	err := json.Unmarshal([]byte(reportBody(`[]`, `"200"`)), &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be JSON numbers")
}
