// Package model はドメインモデルを定義する。
package model

import "time"

// NotificationType は通知の種別を表す。
type NotificationType string

const (
	// NotificationTypeNewApplication は求人への新規応募を求人企業に知らせる通知。
	NotificationTypeNewApplication NotificationType = "new_job_application"
	// NotificationTypeApplicationAccepted は採用決定を応募者に知らせる通知。
	NotificationTypeApplicationAccepted NotificationType = "job_application_accepted"
	// NotificationTypeApplicationRejected は不採用を応募者に知らせる通知。
	NotificationTypeApplicationRejected NotificationType = "job_application_rejected"
)

// Notification はユーザーへの通知を表す。
// 作成後の変更はIsReadフラグの反転のみで、クライアントから削除されることはない。
// JobID/ApplicationIDは参照情報であり、参照先が削除されてもNULLとして残る。
type Notification struct {
	ID            string
	UserID        string
	Type          NotificationType
	Title         string
	Message       string
	JobID         *string
	ApplicationID *string
	IsRead        bool
	CreatedAt     time.Time
}
