package ocrService

import (
	"regexp"
	"strings"

	"ProjectOCR/internal/entity"
)

var (
	ifscPattern = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	datePattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	nonDigit    = regexp.MustCompile(`\D`)
)

// ValidateChequeData reports every violation in one pass; checks never
// short-circuit each other.
func ValidateChequeData(data *entity.ChequeData) []string {
	errors := []string{}

	if strings.TrimSpace(data.BankName) == "" {
		errors = append(errors, "Bank name is required")
	}

	if strings.TrimSpace(data.AccountNumber) == "" {
		errors = append(errors, "Account number is required")
	}

	if strings.TrimSpace(data.IFSCCode) == "" {
		errors = append(errors, "IFSC code is required")
	} else if !ifscPattern.MatchString(data.IFSCCode) {
		errors = append(errors, "Invalid IFSC code format")
	}

	if strings.TrimSpace(data.ChequeNumber) == "" {
		errors = append(errors, "Cheque number is required")
	}

	if strings.TrimSpace(data.Date) == "" {
		errors = append(errors, "Date is required")
	} else if !datePattern.MatchString(data.Date) {
		errors = append(errors, "Invalid date format (expected DD/MM/YYYY)")
	}

	if data.MICRCode != "" {
		if len(nonDigit.ReplaceAllString(data.MICRCode, "")) != 9 {
			errors = append(errors, "Invalid MICR code format")
		}
	}

	return errors
}

func ValidateENachData(data *entity.ENachData) []string {
	errors := []string{}

	if strings.TrimSpace(data.BankName) == "" {
		errors = append(errors, "Bank name is required")
	}

	if strings.TrimSpace(data.AccountNumber) == "" {
		errors = append(errors, "Account number is required")
	}

	if strings.TrimSpace(data.AccountHolderName) == "" {
		errors = append(errors, "Account holder name is required")
	}

	if strings.TrimSpace(data.IFSCCode) == "" {
		errors = append(errors, "IFSC code is required")
	} else if !ifscPattern.MatchString(data.IFSCCode) {
		errors = append(errors, "Invalid IFSC code format")
	}

	if strings.TrimSpace(data.MaxAmount) == "" {
		errors = append(errors, "Maximum amount is required")
	}

	if strings.TrimSpace(data.Frequency) == "" {
		errors = append(errors, "Frequency is required")
	}

	if data.StartDate != "" && !datePattern.MatchString(data.StartDate) {
		errors = append(errors, "Invalid start date format (expected DD/MM/YYYY)")
	}

	if data.EndDate != "" && !datePattern.MatchString(data.EndDate) {
		errors = append(errors, "Invalid end date format (expected DD/MM/YYYY)")
	}

	if data.DateOfMandate != "" && !datePattern.MatchString(data.DateOfMandate) {
		errors = append(errors, "Invalid mandate date format (expected DD/MM/YYYY)")
	}

	return errors
}
