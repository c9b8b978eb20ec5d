package textgen

import (
	"context"
	"errors"
	"time"

	"github.com/inourx99/Englishcompition/internal/domain/model"
	"github.com/inourx99/Englishcompition/pkg/logger"
	"github.com/inourx99/Englishcompition/pkg/metrics"
)

// Fixed texts shown when generation is not possible.
const (
	IdeasNotConfigured         = "الرجاء التأكد من إعداد مفتاح API الخاص بـ Gemini."
	IdeasFailed                = "حدث خطأ أثناء الاتصال بالذكاء الاصطناعي."
	IdeasEmpty                 = "لم أتمكن من توليد أفكار في الوقت الحالي."
	EncouragementNotConfigured = "أحسنتِ! واصلي التقدم."
	EncouragementFailed        = "أحسنتِ صنعاً! استمري."
)

// Result is display text and whether it is a fixed fallback.
type Result struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// Advisor wraps a Generator and never fails: every error becomes a fallback text.
type Advisor struct {
	gen Generator
	log logger.Logger
}

// NewAdvisor creates an Advisor. A nil generator always answers with fallbacks.
func NewAdvisor(gen Generator, l logger.Logger) *Advisor {
	if l == nil {
		l = logger.Nop()
	}
	return &Advisor{gen: gen, log: l}
}

// ProjectIdeas returns ideas for grade or a fallback.
func (a *Advisor) ProjectIdeas(ctx context.Context, grade model.Grade) Result {
	start := time.Now()
	var text string
	err := ErrNotConfigured
	if a.gen != nil {
		text, err = a.gen.ProjectIdeas(ctx, grade)
	}
	res := a.resolve(ctx, model.AdviceIdeas, text, err, IdeasNotConfigured, IdeasFailed, IdeasEmpty)
	metrics.RecordAdvice(string(model.AdviceIdeas), res.Fallback, msSince(start))
	return res
}

// Encouragement returns a message for name or a fallback.
func (a *Advisor) Encouragement(ctx context.Context, name string, points int) Result {
	start := time.Now()
	var text string
	err := ErrNotConfigured
	if a.gen != nil {
		text, err = a.gen.Encouragement(ctx, name, points)
	}
	res := a.resolve(ctx, model.AdviceEncouragement, text, err,
		EncouragementNotConfigured, EncouragementFailed, EncouragementFailed)
	metrics.RecordAdvice(string(model.AdviceEncouragement), res.Fallback, msSince(start))
	return res
}

func (a *Advisor) resolve(ctx context.Context, kind model.AdviceKind, text string, err error,
	notConfigured, failed, empty string,
) Result {
	switch {
	case err == nil && text != "":
		return Result{Text: text}
	case errors.Is(err, ErrNotConfigured):
		return Result{Text: notConfigured, Fallback: true}
	case err == nil, errors.Is(err, ErrEmptyResponse):
		return Result{Text: empty, Fallback: true}
	default:
		a.log.Warn(ctx, "text generation failed; using fallback",
			logger.String("kind", string(kind)), logger.Error(err))
		return Result{Text: failed, Fallback: true}
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
