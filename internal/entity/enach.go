package entity

// ENachData is the structured record extracted from an e-NACH mandate form.
type ENachData struct {
	UtilityName       string `json:"utilityName"`
	UtilityCode       string `json:"utilityCode"`
	CustomerRefNumber string `json:"customerRefNumber"`
	AccountHolderName string `json:"accountHolderName"`
	BankName          string `json:"bankName"`
	AccountNumber     string `json:"accountNumber"`
	IFSCCode          string `json:"ifscCode"`
	AccountType       string `json:"accountType"`
	MaxAmount         string `json:"maxAmount"`
	Frequency         string `json:"frequency"`
	StartDate         string `json:"startDate"`
	EndDate           string `json:"endDate"`
	PrimaryAccountRef string `json:"primaryAccountRef"`
	SponsorBankName   string `json:"sponsorBankName"`
	UMRN              string `json:"umrn"`
	MandateType       string `json:"mandateType"`
	AuthMode          string `json:"authMode"`
	CustomerSignature bool   `json:"customerSignature"`
	DateOfMandate     string `json:"dateOfMandate"`
	Confidence        int    `json:"confidence"`
	ProcessingTime    int64  `json:"processingTime"`
}
