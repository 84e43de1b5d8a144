package entity

type DocumentType string

const (
	DocumentTypeCheque  DocumentType = "cheque"
	DocumentTypeENach   DocumentType = "enach"
	DocumentTypeUnknown DocumentType = "unknown"
)

type ScannerMode string

const (
	ScannerModeBase           ScannerMode = "base"
	ScannerModeBaseWithFilter ScannerMode = "base_with_filter"
	ScannerModeFull           ScannerMode = "full"
)

type BoundingBox struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

type TextElement struct {
	Text string `json:"text"`
}

type TextLine struct {
	Text     string        `json:"text"`
	Elements []TextElement `json:"elements,omitempty"`
}

type TextBlock struct {
	Text        string       `json:"text"`
	BoundingBox *BoundingBox `json:"boundingBox,omitempty"`
	Lines       []TextLine   `json:"lines,omitempty"`
}

// RecognizedText is the output of the text-recognition collaborator:
// the full concatenated text plus the block/line/element hierarchy.
type RecognizedText struct {
	FullText   string      `json:"fullText"`
	TextBlocks []TextBlock `json:"textBlocks"`
}

type ScanPage struct {
	ImageURI string `json:"imageUri"`
}

type DocumentScanResult struct {
	Success bool       `json:"success"`
	Pages   []ScanPage `json:"pages,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// NormalizedImage is a bounded-size encoded payload ready for the
// recognition and extraction collaborators. Degraded marks the probe
// placeholder fallback; a degraded payload must never silently stand in
// for a real document image.
type NormalizedImage struct {
	MIMEType       string `json:"mimeType"`
	Base64Data     string `json:"data"`
	OriginalWidth  int    `json:"originalWidth"`
	OriginalHeight int    `json:"originalHeight"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Degraded       bool   `json:"degraded,omitempty"`
}
