package model

import (
	"testing"
	"time"
)

func sampleJobs() []*Job {
	now := time.Now()
	return []*Job{
		{
			ID:          "job-1",
			Title:       "Backend Engineer",
			Company:     "Acme",
			Location:    "Tokyo",
			Description: "GoでAPIサーバーを開発します。",
			JobType:     JobTypeFullTime,
			IsActive:    true,
			CreatedAt:   now,
		},
		{
			ID:          "job-2",
			Title:       "Frontend Engineer",
			Company:     "Globex",
			Location:    "Osaka",
			Description: "Reactでの画面開発。",
			JobType:     JobTypeContract,
			IsActive:    true,
			CreatedAt:   now.Add(-time.Hour),
		},
		{
			ID:          "job-3",
			Title:       "Data Analyst",
			Company:     "Acme",
			Location:    "Tokyo / Remote",
			Description: "backendのログ分析基盤を扱います。",
			JobType:     JobTypePartTime,
			IsActive:    true,
			CreatedAt:   now.Add(-2 * time.Hour),
		},
	}
}

// 空フィルタは入力リストをそのまま返すことを検証
func TestFilterJobs_EmptyFilterReturnsAll(t *testing.T) {
	jobs := sampleJobs()

	result := FilterJobs(jobs, JobFilter{})
	if len(result) != len(jobs) {
		t.Fatalf("len(result) = %d, want %d", len(result), len(jobs))
	}
	for i := range jobs {
		if result[i].ID != jobs[i].ID {
			t.Errorf("result[%d].ID = %q, want %q（順序は保存される）", i, result[i].ID, jobs[i].ID)
		}
	}
}

// JobTypeAllセンチネルが「制約なし」として扱われることを検証
func TestFilterJobs_JobTypeAllIsNoConstraint(t *testing.T) {
	jobs := sampleJobs()

	result := FilterJobs(jobs, JobFilter{JobType: JobTypeAll})
	if len(result) != len(jobs) {
		t.Errorf("len(result) = %d, want %d", len(result), len(jobs))
	}
}

// 検索語がtitle/company/descriptionを大文字小文字を区別せず横断検索することを検証
func TestFilterJobs_TermMatchesAcrossFields(t *testing.T) {
	jobs := sampleJobs()

	// "backend" はjob-1のtitleとjob-3のdescriptionにマッチする
	result := FilterJobs(jobs, JobFilter{Term: "backend"})
	if len(result) != 2 {
		t.Fatalf("len(result) = %d, want 2", len(result))
	}
	if result[0].ID != "job-1" || result[1].ID != "job-3" {
		t.Errorf("result IDs = [%q, %q], want [job-1, job-3]", result[0].ID, result[1].ID)
	}

	// companyにもマッチする
	result = FilterJobs(jobs, JobFilter{Term: "GLOBEX"})
	if len(result) != 1 || result[0].ID != "job-2" {
		t.Errorf("company match failed: got %d results", len(result))
	}
}

// 各条件がANDで結合されることを検証
func TestFilterJobs_PredicatesAreConjoined(t *testing.T) {
	jobs := sampleJobs()

	result := FilterJobs(jobs, JobFilter{
		Term:     "backend",
		Location: "tokyo",
		JobType:  JobTypeFullTime,
	})
	if len(result) != 1 {
		t.Fatalf("len(result) = %d, want 1", len(result))
	}
	if result[0].ID != "job-1" {
		t.Errorf("result[0].ID = %q, want %q", result[0].ID, "job-1")
	}

	// locationは合うがjob_typeが合わないケースは除外される
	result = FilterJobs(jobs, JobFilter{Location: "tokyo", JobType: JobTypeContract})
	if len(result) != 0 {
		t.Errorf("len(result) = %d, want 0", len(result))
	}
}

// 同一フィルタを2回適用しても結果が変わらない（冪等）ことを検証
func TestFilterJobs_Idempotent(t *testing.T) {
	jobs := sampleJobs()
	filter := JobFilter{Term: "engineer", Location: "o"}

	once := FilterJobs(jobs, filter)
	twice := FilterJobs(once, filter)

	if len(once) != len(twice) {
		t.Fatalf("len(once) = %d, len(twice) = %d, want equal", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Errorf("twice[%d].ID = %q, want %q", i, twice[i].ID, once[i].ID)
		}
	}
}

// JobFilter.IsEmptyの判定を検証
func TestJobFilter_IsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		filter JobFilter
		want   bool
	}{
		{"全て未指定", JobFilter{}, true},
		{"JobTypeAllのみ", JobFilter{JobType: JobTypeAll}, true},
		{"検索語あり", JobFilter{Term: "go"}, false},
		{"勤務地あり", JobFilter{Location: "tokyo"}, false},
		{"雇用形態あり", JobFilter{JobType: JobTypeFullTime}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

// JobTypeのバリデーションを検証
func TestJobType_IsValid(t *testing.T) {
	valid := []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeFreelance}
	for _, jt := range valid {
		if !jt.IsValid() {
			t.Errorf("IsValid(%q) = false, want true", jt)
		}
	}

	invalid := []JobType{JobTypeAll, "", "internship"}
	for _, jt := range invalid {
		if jt.IsValid() {
			t.Errorf("IsValid(%q) = true, want false", jt)
		}
	}
}
