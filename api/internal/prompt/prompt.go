// Package prompt renders the single instruction sent to the model for a solve.
package prompt

import (
	"fmt"
	"strings"

	"mobtakir/api/internal/technique"
)

// Prompt is one solve request, split the way chat-style APIs expect it.
// Schema is the reply JSON schema; engines with structured output send it
// natively, the rest only rely on the contract embedded in System.
type Prompt struct {
	System string
	User   string
	Schema string
}

const systemRole = `أنت كبير مهندسي الابتكار (Chief Innovation Architect). مهمتك هي تحليل التحدي المعطى واختيار الأداة الإبداعية الأكثر فاعلية لحله من قائمة الأدوات المتاحة، ثم تطبيقها ببراعة.`

// Rubric maps problem characteristics to technique families.
const Rubric = `قواعد الاختيار الاستراتيجي المتقدمة:
1. للمشاكل التقنية/الهندسية المتناقضة: اختر TRIZ أو MORPHOLOGICAL_ANALYSIS.
2. لتطوير المنتجات/الخدمات القائمة: اختر SCAMPER أو ATTRIBUTE_LISTING.
3. للمشاكل التنظيمية أو القرارات الجماعية: اختر SIX_HATS أو DISNEY.
4. للابتكار الجذري في مجالات غير مسبوقة: اختر FIRST_PRINCIPLES أو SIMPLIFICATION.
5. للبحث عن أسواق جديدة: اختر BLUE_OCEAN.
6. إذا كانت المشكلة غامضة جداً: اختر CONCEPT_MAPPING أو MIND_MAPPING أو LOTUS_BLOSSOM.
7. للبحث عن الأسباب الجذرية: اختر FIVE_WHYS أو FISHBONE.
8. لكسر الجمود الذهني: اختر RANDOM_WORD أو LATERAL.
9. لتحفيز المشاركة الجماعية المتساوية: اختر BRAINWRITING.
10. لتغيير منظور التفكير: اختر REFRAMING.
11. لتوقع الفشل وتجنبه: اختر REVERSE_BRAINSTORMING.`

const tasks = `المطلوب:
1. تحليل "بنية المشكلة" (Domain, Complexity, Goal).
2. اختيار التقنية التي توفر أكبر "رافعة إبداعية" لهذا النوع من التحديات.
3. تطبيق التقنية المختارة داخلياً لتوليد 5 حلول ابتكارية رفيعة المستوى.`

// OutputContract is the reply shape the model must produce.
const OutputContract = `يجب أن تكون المخرجات بصيغة JSON حصرياً بالهيكل التالي:
{
  "techniqueId": "ID التقنية المختار",
  "analysis": "تحليل معمق لسبب اختيار هذه التقنية تحديداً وكيف تعالج جوهر المشكلة (بالعربية)",
  "solutions": [
    {
      "title": "عنوان الحل (جذاب ومبتكر)",
      "text": "وصف تفصيلي للحل وآلية عمله وقيمته المضافة",
      "emoji": "إيموجي معبر",
      "category": "التصنيف الاستراتيجي للحل"
    }
  ]
}`

// Build renders the request for one problem. The problem text is embedded
// verbatim; techniques are listed in the order given.
func Build(problem string, techniques []technique.Descriptor) Prompt {
	var sys strings.Builder
	sys.WriteString(systemRole)
	sys.WriteString("\n\n")
	sys.WriteString(Rubric)
	sys.WriteString("\n\n")
	sys.WriteString(tasks)
	sys.WriteString("\n\n")
	sys.WriteString(OutputContract)

	var user strings.Builder
	fmt.Fprintf(&user, "التحدي: \"%s\"\n\n", problem)
	user.WriteString("الأدوات المتاحة ومعايير اختيارها:\n")
	user.WriteString(RenderCatalog(techniques))

	return Prompt{
		System: sys.String(),
		User:   user.String(),
		Schema: ReplySchema,
	}
}

// RenderCatalog lists techniques one per line as "- ID (name): description".
func RenderCatalog(techniques []technique.Descriptor) string {
	var b strings.Builder
	for _, t := range techniques {
		fmt.Fprintf(&b, "- %s (%s): %s\n", t.ID, t.Name, t.Description)
	}
	return b.String()
}

// Text joins System and User for engines that take a single message.
func (p Prompt) Text() string {
	return p.System + "\n\n" + p.User
}
