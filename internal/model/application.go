// Package model はドメインモデルを定義する。
package model

import "time"

// ApplicationStatus は応募の選考状態を表す。
// 遷移はpending→acceptedまたはpending→rejectedのみ。
type ApplicationStatus string

const (
	// ApplicationStatusPending は選考待ち状態。
	ApplicationStatusPending ApplicationStatus = "pending"
	// ApplicationStatusAccepted は採用決定状態。
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	// ApplicationStatusRejected は不採用状態。
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// IsDecision はステータスが審査結果（accepted/rejected）であるかを判定する。
func (s ApplicationStatus) IsDecision() bool {
	return s == ApplicationStatusAccepted || s == ApplicationStatusRejected
}

// JobApplication は求人への応募を表す。
// 同一求人への重複応募は許容される（一意制約は設けない）。
type JobApplication struct {
	ID              string
	JobID           string
	ApplicantID     string
	ResumeURL       string
	CoverLetter     string
	Status          ApplicationStatus
	AppliedAt       time.Time
	ReviewedAt      *time.Time
	EmployerMessage string
}
