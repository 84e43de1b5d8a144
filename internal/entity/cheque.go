package entity

// ChequeData is the structured record extracted from an Indian bank cheque.
// All string fields default to "" and booleans to false when the model
// response omits them.
type ChequeData struct {
	BankName             string   `json:"bankName"`
	BranchAddress        string   `json:"branchAddress"`
	IFSCCode             string   `json:"ifscCode"`
	AccountHolderName    string   `json:"accountHolderName"`
	AccountNumber        string   `json:"accountNumber"`
	ChequeNumber         string   `json:"chequeNumber"`
	MICRCode             string   `json:"micrCode"`
	Date                 string   `json:"date"`
	AmountInWords        string   `json:"amountInWords"`
	AmountInNumbers      string   `json:"amountInNumbers"`
	PayToName            string   `json:"payToName"`
	SignaturePresent     bool     `json:"signaturePresent"`
	DocumentQuality      string   `json:"documentQuality"`
	DocumentType         string   `json:"documentType"`
	AuthorizationPresent bool     `json:"authorizationPresent"`
	FraudIndicators      []string `json:"fraudIndicators"`
	Confidence           int      `json:"confidence"`
	ProcessingTime       int64    `json:"processingTime"`
}
