package analyzer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Method identifies which provider produced a result.
type Method string

const (
	MethodGeminiPrimary  Method = "gemini-primary"
	MethodKrooloFallback Method = "kroolo-ai-fallback"
)

// Analyzer is one AI provider.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, doc Document, standardNames []string) (*AnalysisResult, error)
}

// Outcome is the tagged result of a pipeline run: exactly one of Result
// (with the Method that produced it) or Err is set.
type Outcome struct {
	Method Method
	Result *AnalysisResult
	Err    error
}

func (o Outcome) Failed() bool { return o.Err != nil }

// ProvidersFailedError carries the primary and fallback failures.
type ProvidersFailedError struct {
	Primary  error
	Fallback error
}

func (e *ProvidersFailedError) Error() string {
	return fmt.Sprintf("Analysis failed with all providers. Gemini: %v; Kroolo: %v", e.Primary, e.Fallback)
}

// Pipeline runs the primary analyzer and, only after it fails, the fallback.
type Pipeline struct {
	Primary  Analyzer
	Fallback Analyzer
}

func NewPipeline(primary, fallback Analyzer) *Pipeline {
	return &Pipeline{Primary: primary, Fallback: fallback}
}

// Run is strictly sequential; providers are never raced.
func (p *Pipeline) Run(ctx context.Context, doc Document, standardNames []string) Outcome {
	result, primaryErr := p.Primary.Analyze(ctx, doc, standardNames)
	if primaryErr == nil {
		log.Info().Str("file", doc.FileName).Str("method", string(MethodGeminiPrimary)).Msg("[Pipeline] analysis completed")
		return Outcome{Method: MethodGeminiPrimary, Result: result}
	}
	log.Warn().Err(primaryErr).Str("file", doc.FileName).Msgf("[Pipeline] %s failed, trying %s", p.Primary.Name(), p.Fallback.Name())

	result, fallbackErr := p.Fallback.Analyze(ctx, doc, standardNames)
	if fallbackErr == nil {
		log.Info().Str("file", doc.FileName).Str("method", string(MethodKrooloFallback)).Msg("[Pipeline] analysis completed")
		return Outcome{Method: MethodKrooloFallback, Result: result}
	}
	log.Error().Err(fallbackErr).Str("file", doc.FileName).Msg("[Pipeline] fallback failed")
	return Outcome{Err: &ProvidersFailedError{Primary: primaryErr, Fallback: fallbackErr}}
}
