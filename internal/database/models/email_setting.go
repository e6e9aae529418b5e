package models

// EmailSetting stores the platform's outbound SMTP configuration, managed by
// administrators. SMTPPassword holds age-encrypted ciphertext.
type EmailSetting struct {
	Base
	SMTPHost     string `gorm:"not null" json:"smtp_host"`
	SMTPPort     int    `gorm:"default:587" json:"smtp_port"`
	SMTPUser     string `json:"smtp_user"`
	SMTPPassword string `json:"-"`
	FromAddress  string `json:"from_address"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}

func (EmailSetting) TableName() string {
	return "email_settings"
}
