package textgen

import (
	"fmt"

	"github.com/inourx99/Englishcompition/internal/domain/model"
)

func ideasPrompt(grade model.Grade) string {
	return fmt.Sprintf(`اقترحي 3 أفكار مشاريع بسيطة وممتعة لمنهج اللغة الإنجليزية لطالبات الصف %s.
يجب أن تكون الأفكار تعليمية وسهلة التنفيذ.
نسقي الإجابة كنقاط مختصرة باللغة العربية.`, grade)
}

func encouragementPrompt(name string, points int) string {
	return fmt.Sprintf(`اكتب رسالة تشجيعية قصيرة جداً (سطر واحد) ومحفزة للطالبة "%s"
التي جمعت %d نقطة في مسابقة اللغة الإنجليزية.
الهدف هو الوصول لـ %d نقطة للفوز بآيباد.
استخدمي إيموجي.`, name, points, model.GoalPoints)
}
