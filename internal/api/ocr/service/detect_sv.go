package ocrService

import (
	"strings"

	"ProjectOCR/internal/entity"
)

// DocumentTypeDetector guesses the document type from recognized text.
// Two profiles exist because the capture path sees richer scanner output
// than the existing-image path; each call site must keep its own thresholds.
type DocumentTypeDetector interface {
	Detect(fullText string) entity.DocumentType
}

type keywordDetector struct {
	chequeKeywords  []string
	enachKeywords   []string
	chequeThreshold int
	enachThreshold  int
}

// NewRichDetector is the in-capture profile: 8 keywords per type,
// cheque at 3 matches, e-NACH at 2.
func NewRichDetector() DocumentTypeDetector {
	return keywordDetector{
		chequeKeywords: []string{
			"pay to",
			"pay to the order of",
			"rupees",
			"account no",
			"ifsc",
			"micr",
			"cheque",
			"bank",
		},
		enachKeywords: []string{
			"mandate",
			"nach",
			"autopay",
			"standing instruction",
			"utility",
			"umrn",
			"sponsor bank",
			"debit type",
		},
		chequeThreshold: 3,
		enachThreshold:  2,
	}
}

// NewReducedDetector is the existing-image profile: trimmed keyword sets,
// cheque at 2 matches, e-NACH at 1.
func NewReducedDetector() DocumentTypeDetector {
	return keywordDetector{
		chequeKeywords: []string{
			"pay to",
			"rupees",
			"account no",
			"ifsc",
			"cheque",
		},
		enachKeywords: []string{
			"mandate",
			"nach",
			"utility",
			"umrn",
		},
		chequeThreshold: 2,
		enachThreshold:  1,
	}
}

// Detect counts case-insensitive substring matches. The cheque rule is
// evaluated first, so cheque wins when both thresholds are met.
func (d keywordDetector) Detect(fullText string) entity.DocumentType {
	lower := strings.ToLower(fullText)

	if countMatches(lower, d.chequeKeywords) >= d.chequeThreshold {
		return entity.DocumentTypeCheque
	}

	if countMatches(lower, d.enachKeywords) >= d.enachThreshold {
		return entity.DocumentTypeENach
	}

	return entity.DocumentTypeUnknown
}

func countMatches(lowerText string, keywords []string) int {
	matches := 0
	for _, keyword := range keywords {
		if strings.Contains(lowerText, keyword) {
			matches++
		}
	}
	return matches
}
