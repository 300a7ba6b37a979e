package brain

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/easeaico/gridcare/internal/types"
)

const (
	langEnglish = "en"
	langArabic  = "ar"
)

var greetings = map[string][]string{
	langEnglish: {"Hello", "Hi", "Good day", "Welcome back"},
	langArabic:  {"مرحباً", "أهلاً", "السلام عليكم"},
}

var replyBodies = map[string]map[string]string{
	langEnglish: {
		types.IntentBilling:   "I can help with your bill. I've reviewed your recent consumption and charges, and you can see the full breakdown in your account under Bills.",
		types.IntentOutage:    "I'm sorry you're without service. Our field team is tracking outages in your area and will restore supply as soon as possible.",
		types.IntentMeter:     "Thanks for letting us know about your meter. You can submit a reading in the app, and a technician can visit if the meter looks faulty.",
		types.IntentComplaint: "I'm sorry about your experience. I've recorded your complaint and a supervisor will review it.",
		types.IntentAdvisory:  "Happy to help you save. Shifting heavy appliances outside peak hours and servicing your air conditioner usually lowers the bill noticeably.",
		types.IntentUnknown:   "Thanks for your message. Could you share a little more detail so I can route it correctly?",
	},
	langArabic: {
		types.IntentBilling:   "يسعدني مساعدتك بخصوص فاتورتك. راجعت استهلاكك ورسومك الأخيرة، ويمكنك الاطلاع على التفاصيل الكاملة في حسابك ضمن قسم الفواتير.",
		types.IntentOutage:    "نأسف لانقطاع الخدمة لديك. فريقنا الميداني يتابع الانقطاعات في منطقتك وسيعيد الخدمة في أقرب وقت ممكن.",
		types.IntentMeter:     "شكراً لإبلاغنا بخصوص العداد. يمكنك إرسال القراءة عبر التطبيق، ويمكن لفني زيارتك إذا بدا العداد معطلاً.",
		types.IntentComplaint: "نأسف لتجربتك. تم تسجيل شكواك وسيقوم مشرف بمراجعتها.",
		types.IntentAdvisory:  "يسعدنا مساعدتك على التوفير. تشغيل الأجهزة الكبيرة خارج أوقات الذروة وصيانة المكيف يخفضان الفاتورة بشكل ملحوظ.",
		types.IntentUnknown:   "شكراً لرسالتك. هل يمكنك مشاركة مزيد من التفاصيل حتى نوجه طلبك بشكل صحيح؟",
	},
}

var escalationNotes = map[string]string{
	langEnglish: "I've also passed this to a member of our support team, who will contact you shortly.",
	langArabic:  "كما قمت بتحويل طلبك إلى أحد أعضاء فريق الدعم وسيتواصل معك قريباً.",
}

var apologies = map[string]string{
	langEnglish: "We're sorry, something went wrong while handling your request. A support agent will contact you shortly.",
	langArabic:  "نعتذر، حدث خطأ أثناء معالجة طلبك. سيتواصل معك أحد موظفي الدعم قريباً.",
}

// normalizeLanguage maps a BCP 47 tag to its base language; anything but Arabic is English.
func normalizeLanguage(lang string) string {
	base, _ := language.Make(strings.TrimSpace(lang)).Base()
	if base.String() == langArabic {
		return langArabic
	}
	return langEnglish
}
