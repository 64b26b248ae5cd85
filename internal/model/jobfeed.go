// Package model はドメインモデルを定義する。
package model

import "time"

// FetchStatus は外部求人フィードのフェッチ状態を表す。
type FetchStatus string

const (
	// FetchStatusActive はアクティブなフェッチ状態。
	FetchStatusActive FetchStatus = "active"
	// FetchStatusStopped は停止されたフェッチ状態。
	FetchStatusStopped FetchStatus = "stopped"
	// FetchStatusError はエラーによるフェッチ停止状態。
	FetchStatusError FetchStatus = "error"
)

// JobFeed は求人企業が登録した外部求人フィード（RSS/Atom）を表す。
// ワーカーが周期的にフェッチし、エントリを下書き求人として取り込む。
type JobFeed struct {
	ID                string
	EmployerID        string
	FeedURL           string
	Title             string
	ETag              string
	LastModified      string
	FetchStatus       FetchStatus
	ConsecutiveErrors int
	ErrorMessage      string
	NextFetchAt       time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ParsedJobPosting はフィードパーサーから取得した未保存の求人データを表す。
// ワーカーがフィードをパースした後、インポートサービスに渡される。
type ParsedJobPosting struct {
	Guid        string
	Title       string
	Link        string
	Description string // 未サニタイズのHTML
	Location    string
	PublishedAt *time.Time
}
