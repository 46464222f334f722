package models

import "gorm.io/gorm"

// Intake field names as they appear in the Bitable and in chat messages.
const (
	FieldChannel   = "渠道"
	FieldSource    = "来源"
	FieldPhone     = "电话"
	FieldWechat    = "微信"
	FieldEntryDate = "录入日期"
	FieldCustomer  = "客户ID"
)

// CustomerArchive mirrors a successfully created Bitable row into the local
// Postgres archive for audit and health reporting.
type CustomerArchive struct {
	gorm.Model
	RecordID  string `json:"record_id" gorm:"uniqueIndex"`
	Channel   string `json:"channel"`
	Source    string `json:"source"`
	Phone     string `json:"phone"`
	Wechat    string `json:"wechat"`
	EntryDate string `json:"entry_date"`
	UserID    string `json:"user_id"` // who submitted the intake
}
