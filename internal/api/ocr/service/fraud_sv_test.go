package ocrService

import (
	"testing"

	"ProjectOCR/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestDetectChequeFraud(t *testing.T) {
	tests := []struct {
		name string
		data *entity.ChequeData
		want []string
	}{
		{
			name: "clean cheque raises nothing",
			data: &entity.ChequeData{
				BankName:          "HDFC Bank",
				AccountNumber:     "1234567890",
				IFSCCode:          "HDFC0001234",
				AccountHolderName: "John Doe",
				Date:              "15/08/2024",
				AmountInNumbers:   "50,000",
				SignaturePresent:  true,
				DocumentQuality:   "Good",
			},
			want: []string{},
		},
		{
			name: "all four indicators",
			data: &entity.ChequeData{
				BankName:         "HDFC Bank",
				AmountInNumbers:  "₹150,000",
				SignaturePresent: false,
				DocumentQuality:  "Poor scan",
			},
			want: []string{
				"No signature detected",
				"Poor document quality detected",
				"High amount transaction",
				"Multiple critical fields missing",
			},
		},
		{
			name: "amount exactly at threshold is not flagged",
			data: &entity.ChequeData{
				BankName:          "HDFC Bank",
				AccountNumber:     "1234567890",
				IFSCCode:          "HDFC0001234",
				AccountHolderName: "John Doe",
				Date:              "15/08/2024",
				AmountInNumbers:   "100000",
				SignaturePresent:  true,
			},
			want: []string{},
		},
		{
			name: "unparseable amount is ignored",
			data: &entity.ChequeData{
				BankName:          "HDFC Bank",
				AccountNumber:     "1234567890",
				IFSCCode:          "HDFC0001234",
				AccountHolderName: "John Doe",
				Date:              "15/08/2024",
				AmountInNumbers:   "one lakh",
				SignaturePresent:  true,
			},
			want: []string{},
		},
		{
			name: "exactly two missing critical fields is tolerated",
			data: &entity.ChequeData{
				BankName:         "HDFC Bank",
				AccountNumber:    "1234567890",
				IFSCCode:         "HDFC0001234",
				SignaturePresent: true,
			},
			want: []string{},
		},
		{
			name: "quality note matching is case insensitive",
			data: &entity.ChequeData{
				BankName:          "HDFC Bank",
				AccountNumber:     "1234567890",
				IFSCCode:          "HDFC0001234",
				AccountHolderName: "John Doe",
				Date:              "15/08/2024",
				SignaturePresent:  true,
				DocumentQuality:   "POOR lighting",
			},
			want: []string{"Poor document quality detected"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectChequeFraud(tt.data))
		})
	}
}
