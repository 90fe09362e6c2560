package quotation

// Record represents a row of the legacy QuotationsStatus table. The scan
// workflow only ever reads one row and updates the two slot columns plus
// the packer; everything else on the table is owned upstream.
type Record struct {
	ID              uint   `gorm:"column:id;primaryKey;autoIncrement"`
	QuotationNumber string `gorm:"column:QuotationNumber;size:50;uniqueIndex"`
	Packer          string `gorm:"column:Packer;size:100"`
	FirstScan       string `gorm:"column:Dop2;size:30"`
	SecondScan      string `gorm:"column:Dop3;size:30"`
	AccountNo       string `gorm:"column:AccountNo;size:50"`
}

// TableName specifies the legacy table name for Record
func (Record) TableName() string {
	return "QuotationsStatus"
}

// RejectReason classifies why a scan was not recorded.
type RejectReason string

const (
	// ReasonNotFound means no record matches the quotation number.
	ReasonNotFound RejectReason = "not_found"
	// ReasonCooldown means the quotation was scanned within the last
	// two minutes.
	ReasonCooldown RejectReason = "cooldown"
	// ReasonCompleted means both scan slots are already filled.
	ReasonCompleted RejectReason = "completed"
)

// ScanResult is the outcome of processing one scan. Field names match
// the wire format the original station clients expect, including the
// legacy dop2/dop3 echo on over-scanned quotations.
type ScanResult struct {
	Success          bool         `json:"success"`
	Message          string       `json:"message,omitempty"`
	ScanNumber       int          `json:"scan_number,omitempty"`
	Timestamp        string       `json:"timestamp,omitempty"`
	AccountNo        string       `json:"account_no,omitempty"`
	Error            string       `json:"error,omitempty"`
	SecondsAgo       *int         `json:"seconds_ago,omitempty"`
	SecondsRemaining *int         `json:"seconds_remaining,omitempty"`
	FirstScan        string       `json:"dop2,omitempty"`
	SecondScan       string       `json:"dop3,omitempty"`
	Reason           RejectReason `json:"-"`
}
