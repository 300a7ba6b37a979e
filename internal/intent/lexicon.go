package intent

import "github.com/easeaico/gridcare/internal/types"

// keywordGroup ties an intent category to the phrases that signal it.
type keywordGroup struct {
	category   string
	confidence float64
	keywords   []string
}

// groups are evaluated in order; the first group with a hit wins.
var groups = []keywordGroup{
	{
		category:   types.IntentBilling,
		confidence: 0.85,
		keywords: []string{
			"bill", "invoice", "charge", "payment", "pay ", "amount", "refund", "tariff",
			"فاتورة", "الفاتورة", "دفع", "مبلغ", "رسوم", "استرداد",
		},
	},
	{
		category:   types.IntentOutage,
		confidence: 0.88,
		keywords: []string{
			"outage", "no power", "power cut", "blackout", "no electricity", "no water",
			"electricity is out", "power is out", "انقطاع", "لا توجد كهرباء", "الكهرباء مقطوعة", "لا يوجد ماء",
		},
	},
	{
		category:   types.IntentMeter,
		confidence: 0.82,
		keywords: []string{
			"meter", "reading", "smart meter", "عداد", "العداد", "قراءة",
		},
	},
	{
		category:   types.IntentComplaint,
		confidence: 0.78,
		keywords: []string{
			"complaint", "complain", "dissatisfied", "unacceptable", "poor service", "rude",
			"شكوى", "اشتكي", "غير راض", "سيئة",
		},
	},
	{
		category:   types.IntentAdvisory,
		confidence: 0.75,
		keywords: []string{
			"advice", "advise", "tip", "save", "saving", "reduce", "efficiency", "recommend",
			"نصيحة", "نصائح", "توفير", "تقليل", "ترشيد",
		},
	},
}
