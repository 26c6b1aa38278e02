package domain

const StatusCompleted = "completed"

// Transaction is one completed (or since-edited) sale. Times are epoch
// milliseconds; nil Received means the cash amount was not tracked.
type Transaction struct {
	ID       int64      `json:"id,string"`
	Time     int64      `json:"time"`
	Items    []CartLine `json:"items"`
	Total    int64      `json:"total"`
	Received *int64     `json:"received,omitempty"`
	Change   *int64     `json:"change,omitempty"`
	Status   string     `json:"status"`

	IsModified   bool  `json:"is_modified,omitempty"`
	LastModified int64 `json:"last_modified,omitempty"`
}

// Valid reports whether a transaction loaded from storage has the
// required shape.
func (t Transaction) Valid() bool {
	if t.ID == 0 || t.Time <= 0 || t.Status == "" {
		return false
	}
	for _, it := range t.Items {
		if it.ID == "" || it.Qty <= 0 {
			return false
		}
	}
	return true
}

// Payment carries replacement payment figures for a transaction edit.
type Payment struct {
	Received *int64 `json:"received"`
	Change   *int64 `json:"change"`
}

// Settings is the small non-transactional preferences record.
type Settings struct {
	// BarcodeSymbology is the label of the active scanner symbology.
	BarcodeSymbology string `json:"barcode_symbology"`
}

func DefaultSettings() Settings {
	return Settings{BarcodeSymbology: "EAN-13"}
}
