package models

import "time"

// SupervisorFeedback is the feedback block printed on a certificate.
type SupervisorFeedback struct {
	Rating             float64  `json:"rating"`
	Feedback           string   `json:"feedback"`
	SkillsDemonstrated []string `json:"skillsDemonstrated,omitempty"`
}

// Certificate is a generated completion certificate record.
type Certificate struct {
	ID               string             `json:"certificateId"`
	StudentName      string             `json:"studentName"`
	JobTitle         string             `json:"jobTitle"`
	Company          string             `json:"company"`
	Feedback         SupervisorFeedback `json:"supervisorFeedback"`
	IssuedAt         string             `json:"issuedAt"`
	ValidUntil       string             `json:"validUntil"`
	VerificationCode string             `json:"verificationCode"`
	PDFPath          string             `json:"-"`
	QRPath           string             `json:"-"`
	CreatedAt        time.Time          `json:"-"`
}
