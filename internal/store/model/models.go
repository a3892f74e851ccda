package model

// SubmissionStatus tracks one order's trip to the broker.
type SubmissionStatus int

const (
	SubmissionStatusPending   SubmissionStatus = 0
	SubmissionStatusSubmitted SubmissionStatus = 1
	SubmissionStatusFailed    SubmissionStatus = 2
)

// SubmissionModel is the persisted record of one order submission, keyed by
// the order's idempotency fingerprint. It is what lets a restarted process
// recognize an order the broker already acknowledged.
type SubmissionModel struct {
	ID             int64            `gorm:"column:id;primaryKey"`
	IdempotencyKey string           `gorm:"column:idempotency_key;uniqueIndex"`
	Symbol         string           `gorm:"column:symbol"`
	Qty            int              `gorm:"column:qty"`
	Side           string           `gorm:"column:side"`
	BrokerOrderID  string           `gorm:"column:broker_order_id"`
	Status         SubmissionStatus `gorm:"column:status"`
	Message        string           `gorm:"column:message"`
	Attempts       int              `gorm:"column:attempts"`
	CreatedAtUnix  int64            `gorm:"column:created_at"`
	UpdatedAtUnix  int64            `gorm:"column:updated_at"`
}

// TableName pins the table name independent of gorm pluralization rules.
func (SubmissionModel) TableName() string {
	return "submissions"
}
