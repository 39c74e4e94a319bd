package ocr

import "time"

type Status string

const (
	StatusUploaded   Status = "UPLOADED"
	StatusProcessing Status = "OCR_PROCESSING"
	StatusAnalyzed   Status = "ANALYZED"
	StatusFailed     Status = "FAILED"
)

// Upload is one label photo moving through OCR and analysis.
type Upload struct {
	ID               string    `json:"id"`
	UserID           string    `json:"-"`
	ObjectKey        string    `json:"-"`
	OriginalFilename string    `json:"originalFilename"`
	Status           Status    `json:"status"`
	RawText          *string   `json:"rawText,omitempty"`
	IngredientText   *string   `json:"ingredientText,omitempty"`
	ScanID           *string   `json:"scanId,omitempty"`
	FailureReason    *string   `json:"failureReason,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
