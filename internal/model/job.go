// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// JobType は雇用形態を表す。
type JobType string

const (
	// JobTypeFullTime は正社員。
	JobTypeFullTime JobType = "full-time"
	// JobTypePartTime はパートタイム。
	JobTypePartTime JobType = "part-time"
	// JobTypeContract は契約社員。
	JobTypeContract JobType = "contract"
	// JobTypeFreelance はフリーランス。
	JobTypeFreelance JobType = "freelance"

	// JobTypeAll は検索フィルタで雇用形態を限定しないことを表すセンチネル値。
	JobTypeAll JobType = "all"
)

// IsValid は雇用形態が定義済みのいずれかであるかを判定する。
// センチネル値のJobTypeAllは求人レコードの値としては無効。
func (t JobType) IsValid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeFreelance:
		return true
	default:
		return false
	}
}

// Job は求人を表す。
// 求職者向けの一覧にはIsActive=trueのものだけが表示される。
// 外部フィードから取り込まれた求人はSourceFeedID/SourceGuidを持つ。
type Job struct {
	ID              string
	Title           string
	Company         string
	Location        string
	Description     string // サニタイズ済みHTML
	Requirements    string // サニタイズ済みHTML
	SalaryRange     string
	JobType         JobType
	RequiredSkills  []string
	ExperienceLevel string
	EmployerID      string
	IsActive        bool
	SourceFeedID    *string
	SourceGuid      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// JobFilter は求人検索の条件を表す。
// 各条件はANDで結合される。空のterm/location、およびJobTypeAllは
// 「制約なし」を意味し、「何もマッチしない」ではない。
type JobFilter struct {
	Term     string  // title/company/descriptionに対する大文字小文字を区別しない部分一致
	Location string  // locationに対する大文字小文字を区別しない部分一致
	JobType  JobType // 完全一致。JobTypeAllまたは空は制約なし
}

// IsEmpty は全条件が未指定（制約なし）かを判定する。
func (f JobFilter) IsEmpty() bool {
	return f.Term == "" && f.Location == "" && (f.JobType == "" || f.JobType == JobTypeAll)
}

// Matches は求人がフィルタ条件を満たすかを判定する。
// SQL側の検索述語と同一のセマンティクスを持ち、
// 少数の求人リストをメモリ上で絞り込む用途（企業ダッシュボード等）で使用する。
func (f JobFilter) Matches(job *Job) bool {
	if f.Term != "" {
		term := strings.ToLower(f.Term)
		if !strings.Contains(strings.ToLower(job.Title), term) &&
			!strings.Contains(strings.ToLower(job.Company), term) &&
			!strings.Contains(strings.ToLower(job.Description), term) {
			return false
		}
	}

	if f.Location != "" {
		if !strings.Contains(strings.ToLower(job.Location), strings.ToLower(f.Location)) {
			return false
		}
	}

	if f.JobType != "" && f.JobType != JobTypeAll {
		if job.JobType != f.JobType {
			return false
		}
	}

	return true
}

// FilterJobs はフィルタ条件を満たす求人だけを抽出した新しいスライスを返す。
// 元の順序を保持する（ランキングは行わない）。
func FilterJobs(jobs []*Job, filter JobFilter) []*Job {
	if filter.IsEmpty() {
		return jobs
	}
	result := make([]*Job, 0, len(jobs))
	for _, job := range jobs {
		if filter.Matches(job) {
			result = append(result, job)
		}
	}
	return result
}
