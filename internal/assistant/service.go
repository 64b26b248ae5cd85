// Package assistant はGeminiを利用したキャリアアシスタント機能を提供する。
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/hitoshi/jobman/internal/metrics"
	"github.com/hitoshi/jobman/internal/model"
)

// 失敗時にユーザーへ返す固定メッセージ。
// 生のエラーは決してユーザーに露出させない。
const (
	apologyChat            = "I apologize, but I am unable to respond at the moment. Please check your internet connection and try again. If the problem persists, please try rephrasing your question."
	apologyJobDescription  = "I apologize, but I am unable to generate a job description at the moment. Please try writing one manually or try again later."
	apologyRecommendations = "I apologize, but I am unable to provide job recommendations at the moment. Please try again later or check your internet connection."
	apologyInterview       = "Sorry, I cannot generate interview questions right now. Please try again later."
	apologyResume          = "Sorry, I cannot analyze your resume right now. Please try again later."
)

// GenerationConfig はテキスト生成の固定パラメータ。
// デプロイ単位で固定であり、ユーザーからは変更できない。
type GenerationConfig struct {
	Temperature float64
	TopP        float64
	TopK        int
	MaxTokens   int
}

// Service はアシスタント機能を提供する。
// 各呼び出しはステートレスで、会話履歴は保持しない。リトライも行わない。
// llmがnilの場合は無効化モードとして動作し、常に固定メッセージを返す。
type Service struct {
	llm     llms.Model
	opts    []llms.CallOption
	metrics metrics.MetricsCollector
}

// NewService はServiceを生成する。
func NewService(llm llms.Model, cfg GenerationConfig, collector metrics.MetricsCollector) *Service {
	return &Service{
		llm:     llm,
		metrics: collector,
		opts: []llms.CallOption{
			llms.WithTemperature(cfg.Temperature),
			llms.WithTopP(cfg.TopP),
			llms.WithTopK(cfg.TopK),
			llms.WithMaxTokens(cfg.MaxTokens),
		},
	}
}

// NewGeminiClient はGeminiのLLMクライアントを生成する。
// APIキーが空の場合はnilを返し、アシスタントは無効化モードになる。
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (llms.Model, error) {
	if apiKey == "" {
		slog.Warn("GEMINI_API_KEY is not set, assistant runs in disabled mode")
		return nil, nil
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return llm, nil
}

// Chat はロールに応じたアドバイザーとして質問に回答する。
func (s *Service) Chat(ctx context.Context, role model.Role, message string) string {
	var roleContext string
	if role == model.RoleEmployer {
		roleContext = "You are a recruitment and HR consultant helping an employer. Provide specific, actionable advice about hiring processes, job posting optimization, candidate evaluation, team building, and talent management. Be professional and strategic."
	} else {
		roleContext = "You are a professional career advisor helping a job seeker. Provide specific, actionable advice about job searching, career development, interview preparation, resume improvement, and professional growth. Be encouraging but realistic."
	}

	prompt := fmt.Sprintf(`%s

User Question: %q

Please provide a helpful, specific, and actionable response. Include practical tips where appropriate. Keep your response conversational but professional, and aim for 2-4 paragraphs.`, roleContext, message)

	return s.generate(ctx, "chat", prompt, apologyChat)
}

// GenerateJobDescription は職種と会社名から求人票の下書きを生成する。
func (s *Service) GenerateJobDescription(ctx context.Context, jobTitle, company string) string {
	prompt := fmt.Sprintf(`Create a comprehensive, professional job description for the position: %q at %q.

Please include:
1. Company overview (2-3 sentences)
2. Job summary (3-4 sentences)
3. Key responsibilities (5-7 bullet points)
4. Required qualifications (education, experience, skills)
5. Preferred qualifications
6. Benefits overview

Make it engaging, specific, and professional. Use industry-standard language and formatting.`, jobTitle, company)

	return s.generate(ctx, "job_description", prompt, apologyJobDescription)
}

// GenerateJobRecommendations はプロフィールとスキルから求人の提案を生成する。
func (s *Service) GenerateJobRecommendations(ctx context.Context, userProfile string, skills []string) string {
	prompt := fmt.Sprintf(`As a professional career advisor, analyze this user profile and skills to provide specific, actionable job recommendations.

User Profile: %q
Skills: %s

Please provide:
1. 3-5 specific job titles that match their skills
2. Brief explanation (2-3 sentences) for each recommendation
3. Practical next steps they can take

Format your response in a clear, professional manner with bullet points and actionable advice.`, userProfile, strings.Join(skills, ", "))

	return s.generate(ctx, "recommendations", prompt, apologyRecommendations)
}

// GenerateInterviewQuestions は職種と経験レベルに応じた面接質問を生成する。
func (s *Service) GenerateInterviewQuestions(ctx context.Context, jobTitle, experience string) string {
	prompt := fmt.Sprintf(`Generate 8-10 relevant interview questions for a %q position with %s experience level.

Include:
1. 2-3 behavioral questions (STAR method)
2. 3-4 technical/role-specific questions
3. 2-3 situational questions
4. 1-2 questions about career goals

Format each question clearly and provide brief notes on what to look for in answers.`, jobTitle, experience)

	return s.generate(ctx, "interview_questions", prompt, apologyInterview)
}

// OptimizeResume は対象職種に向けた履歴書の改善提案を生成する。
func (s *Service) OptimizeResume(ctx context.Context, resumeContent, targetJob string) string {
	prompt := fmt.Sprintf(`As a professional resume coach, analyze this resume content and provide specific optimization suggestions for a %q position:

Resume Content: %q

Please provide:
1. 3-5 specific improvements for content
2. Keyword suggestions for the target role
3. Formatting and structure recommendations
4. Action items to strengthen the application

Focus on making the resume more competitive and ATS-friendly.`, targetJob, resumeContent)

	return s.generate(ctx, "resume_optimization", prompt, apologyResume)
}

func (s *Service) generate(ctx context.Context, useCase, prompt, apology string) string {
	if s.llm == nil {
		return apology
	}

	s.metrics.RecordAssistantCall(useCase)

	resp, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt, s.opts...)
	if err != nil {
		s.metrics.RecordAssistantFailure(useCase)
		slog.Error("assistant generation failed",
			slog.String("use_case", useCase),
			slog.String("error", err.Error()),
		)
		return apology
	}
	return resp
}
