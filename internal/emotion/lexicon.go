package emotion

var positiveKeywords = []string{
	"happy", "thank", "thanks", "great", "excellent", "good", "satisfied", "appreciate",
	"love", "perfect", "wonderful", "helpful", "resolved",
	"شكرا", "ممتاز", "سعيد", "رائع", "جيد", "راض", "ممتن",
}

var negativeKeywords = []string{
	"angry", "bad", "terrible", "awful", "worst", "frustrated", "disappointed", "unacceptable",
	"hate", "annoyed", "poor", "horrible", "upset", "ridiculous", "useless",
	"غاضب", "سيء", "سيئة", "محبط", "مستاء", "فظيع", "غير مقبول",
}

type emotionEntry struct {
	name     string
	keywords []string
}

// emotionTable is scanned in declaration order; several emotions may co-occur.
var emotionTable = []emotionEntry{
	{name: EmotionAngry, keywords: []string{"angry", "furious", "mad", "outraged", "livid", "غاضب", "غضبان"}},
	{name: "frustrated", keywords: []string{"frustrated", "frustrating", "fed up", "annoyed", "sick of", "محبط", "مستاء"}},
	{name: "worried", keywords: []string{"worried", "concerned", "anxious", "afraid", "scared", "قلق", "خائف"}},
	{name: "confused", keywords: []string{"confused", "confusing", "don't understand", "unclear", "محتار", "لا أفهم"}},
	{name: "happy", keywords: []string{"happy", "glad", "pleased", "delighted", "سعيد", "مسرور"}},
	{name: "grateful", keywords: []string{"thank", "thanks", "grateful", "appreciate", "شكرا", "ممتن"}},
}

type urgencyTier struct {
	level    string
	keywords []string
}

// urgencyTiers are scanned from most to least severe; the first hit wins.
var urgencyTiers = []urgencyTier{
	{level: UrgencyCritical, keywords: []string{
		"emergency", "danger", "dangerous", "fire", "sparks", "smoke", "gas leak", "electrocuted",
		"life support", "طوارئ", "خطر", "حريق", "شرارة", "دخان",
	}},
	{level: UrgencyHigh, keywords: []string{
		"urgent", "urgently", "immediately", "asap", "right now", "no power", "today",
		"عاجل", "فورا", "حالا", "اليوم",
	}},
	{level: UrgencyMedium, keywords: []string{
		"soon", "waiting", "still", "days", "week", "قريبا", "انتظار", "أيام",
	}},
	{level: UrgencyLow, keywords: []string{
		"whenever", "no rush", "wondering", "curious", "question", "وقت لاحق", "استفسار",
	}},
}
