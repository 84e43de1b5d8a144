package ocrService

import (
	"fmt"
	"math"
	"strings"

	"ProjectOCR/internal/api/ocr"
	"ProjectOCR/internal/entity"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/context"
)

const chequePrompt = `Extract cheque details from this Indian bank cheque image.
Return JSON with exact keys:
{
  "bank_name": "string",
  "branchAddress": "string",
  "ifsc_code": "string",
  "account_holder_name": "string",
  "account_number": "string",
  "chequeNumber": "string",
  "micr_code": "string",
  "date": "DD/MM/YYYY",
  "amountInWords": "string",
  "amountInNumbers": "string",
  "payToName": "string",
  "signature_present": "boolean",
  "document_quality": "string",
  "document_type": "string",
  "authorizationPresent": "boolean",
  "fraud_indicators": ["array of potential fraud indicators"]
}`

const enachPrompt = `Extract e-NACH mandate details from this Indian e-NACH form.
Return JSON with exact keys:
{
  "utilityName": "string",
  "utilityCode": "string",
  "customerRefNumber": "string",
  "accountHolderName": "string",
  "bankName": "string",
  "accountNumber": "string",
  "ifscCode": "string",
  "accountType": "string",
  "maxAmount": "string",
  "frequency": "string",
  "startDate": "DD/MM/YYYY",
  "endDate": "DD/MM/YYYY",
  "primaryAccountRef": "string",
  "sponsorBankName": "string",
  "umrn": "string",
  "mandateType": "string",
  "authMode": "string",
  "customerSignature": "boolean",
  "dateOfMandate": "DD/MM/YYYY"
}`

// Schema key lists double as the confidence denominator: confidence is the
// share of schema fields the model actually populated.
var chequeSchemaKeys = []string{
	"bank_name",
	"branchAddress",
	"ifsc_code",
	"account_holder_name",
	"account_number",
	"chequeNumber",
	"micr_code",
	"date",
	"amountInWords",
	"amountInNumbers",
	"payToName",
	"signature_present",
	"document_quality",
	"document_type",
	"authorizationPresent",
	"fraud_indicators",
}

var enachSchemaKeys = []string{
	"utilityName",
	"utilityCode",
	"customerRefNumber",
	"accountHolderName",
	"bankName",
	"accountNumber",
	"ifscCode",
	"accountType",
	"maxAmount",
	"frequency",
	"startDate",
	"endDate",
	"primaryAccountRef",
	"sponsorBankName",
	"umrn",
	"mandateType",
	"authMode",
	"customerSignature",
	"dateOfMandate",
}

func promptFor(docType entity.DocumentType) string {
	if docType == entity.DocumentTypeENach {
		return enachPrompt
	}
	return chequePrompt
}

func (s *ocrService) extractRawFields(c context.Context, payload entity.NormalizedImage, docType entity.DocumentType) (string, error) {
	raw, err := s.gemini.AnalyzeImage(c, payload, promptFor(docType))
	if err != nil {
		return "", fmt.Errorf("field extraction failed: %w", err)
	}
	return raw, nil
}

// extractJSONBlock carves the substring between the first '{' and the last
// '}' out of the model response. Prose wrapped around the JSON is tolerated;
// a response without both delimiters is not.
func extractJSONBlock(response string) (string, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return "", ocr.ErrResponseParse
	}
	return response[start : end+1], nil
}

func decodeResponse(response string) (map[string]interface{}, error) {
	block, err := extractJSONBlock(response)
	if err != nil {
		return nil, err
	}

	var data map[string]interface{}
	if err := jsoniter.UnmarshalFromString(block, &data); err != nil {
		return nil, ocr.ErrResponseParse
	}

	return data, nil
}

func stringField(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

// boolField accepts a native boolean or the literal string "true";
// everything else coerces to false.
func boolField(data map[string]interface{}, key string) bool {
	switch v := data[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

func fraudIndicatorList(data map[string]interface{}, key string) []string {
	indicators := []string{}

	items, ok := data[key].([]interface{})
	if !ok {
		return indicators
	}

	for _, item := range items {
		if str, ok := item.(string); ok && strings.TrimSpace(str) != "" {
			indicators = append(indicators, str)
		}
	}

	return indicators
}

func parseChequeResponse(response string) (*entity.ChequeData, error) {
	data, err := decodeResponse(response)
	if err != nil {
		return nil, err
	}

	return &entity.ChequeData{
		BankName:             stringField(data, "bank_name"),
		BranchAddress:        stringField(data, "branchAddress"),
		IFSCCode:             stringField(data, "ifsc_code"),
		AccountHolderName:    stringField(data, "account_holder_name"),
		AccountNumber:        stringField(data, "account_number"),
		ChequeNumber:         stringField(data, "chequeNumber"),
		MICRCode:             stringField(data, "micr_code"),
		Date:                 stringField(data, "date"),
		AmountInWords:        stringField(data, "amountInWords"),
		AmountInNumbers:      stringField(data, "amountInNumbers"),
		PayToName:            stringField(data, "payToName"),
		SignaturePresent:     boolField(data, "signature_present"),
		DocumentQuality:      stringField(data, "document_quality"),
		DocumentType:         stringField(data, "document_type"),
		AuthorizationPresent: boolField(data, "authorizationPresent"),
		FraudIndicators:      fraudIndicatorList(data, "fraud_indicators"),
	}, nil
}

func parseENachResponse(response string) (*entity.ENachData, error) {
	data, err := decodeResponse(response)
	if err != nil {
		return nil, err
	}

	return &entity.ENachData{
		UtilityName:       stringField(data, "utilityName"),
		UtilityCode:       stringField(data, "utilityCode"),
		CustomerRefNumber: stringField(data, "customerRefNumber"),
		AccountHolderName: stringField(data, "accountHolderName"),
		BankName:          stringField(data, "bankName"),
		AccountNumber:     stringField(data, "accountNumber"),
		IFSCCode:          stringField(data, "ifscCode"),
		AccountType:       stringField(data, "accountType"),
		MaxAmount:         stringField(data, "maxAmount"),
		Frequency:         stringField(data, "frequency"),
		StartDate:         stringField(data, "startDate"),
		EndDate:           stringField(data, "endDate"),
		PrimaryAccountRef: stringField(data, "primaryAccountRef"),
		SponsorBankName:   stringField(data, "sponsorBankName"),
		UMRN:              stringField(data, "umrn"),
		MandateType:       stringField(data, "mandateType"),
		AuthMode:          stringField(data, "authMode"),
		CustomerSignature: boolField(data, "customerSignature"),
		DateOfMandate:     stringField(data, "dateOfMandate"),
	}, nil
}

func fieldPopulated(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case []interface{}:
		return len(t) > 0
	default:
		return true
	}
}

// calculateConfidence scores the raw response against the schema key list:
// populated fields over total fields, scaled to [0, 100]. A response that
// cannot be decoded scores a neutral 50, which callers must not treat as a
// measured value.
func calculateConfidence(response string, schemaKeys []string) int {
	data, err := decodeResponse(response)
	if err != nil {
		return 50
	}

	populated := 0
	for _, key := range schemaKeys {
		if fieldPopulated(data[key]) {
			populated++
		}
	}

	return int(math.Round(float64(populated) / float64(len(schemaKeys)) * 100))
}
