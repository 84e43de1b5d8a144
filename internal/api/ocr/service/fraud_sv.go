package ocrService

import (
	"regexp"
	"strconv"
	"strings"

	"ProjectOCR/internal/entity"
)

const highAmountThreshold = 100000

var amountNoise = regexp.MustCompile(`[^0-9.]`)

// DetectChequeFraud runs the local rule set over a parsed cheque. Its output
// is appended to whatever indicators the model already supplied; duplicates
// between the two sources are kept.
func DetectChequeFraud(data *entity.ChequeData) []string {
	indicators := []string{}

	if !data.SignaturePresent {
		indicators = append(indicators, "No signature detected")
	}

	if strings.Contains(strings.ToLower(data.DocumentQuality), "poor") {
		indicators = append(indicators, "Poor document quality detected")
	}

	if amount, err := strconv.ParseFloat(amountNoise.ReplaceAllString(data.AmountInNumbers, ""), 64); err == nil && amount > highAmountThreshold {
		indicators = append(indicators, "High amount transaction")
	}

	criticalFields := []string{
		data.BankName,
		data.AccountNumber,
		data.IFSCCode,
		data.AccountHolderName,
		data.Date,
	}

	missing := 0
	for _, field := range criticalFields {
		if strings.TrimSpace(field) == "" {
			missing++
		}
	}

	if missing > 2 {
		indicators = append(indicators, "Multiple critical fields missing")
	}

	return indicators
}
