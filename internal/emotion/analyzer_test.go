package emotion

import (
	"encoding/json"
	"testing"
)

func TestAnalyzePositive(t *testing.T) {
	got := NewAnalyzer().Analyze("I am very happy, thank you", "en")
	if got.Sentiment != SentimentPositive {
		t.Fatalf("expected positive, got %s", got.Sentiment)
	}
	if got.Confidence <= 0.5 {
		t.Fatalf("expected confidence above 0.5, got %v", got.Confidence)
	}
	if got.Satisfaction < 4 {
		t.Fatalf("expected satisfaction >= 4, got %d", got.Satisfaction)
	}
	if got.PrimaryEmotion != "happy" {
		t.Fatalf("expected primary emotion happy, got %s", got.PrimaryEmotion)
	}
}

func TestAnalyzeEmptyReturnsDefault(t *testing.T) {
	analyzer := NewAnalyzer()
	first, err := json.Marshal(analyzer.Analyze("", "en"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := json.Marshal(analyzer.Analyze("", "ar"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("default result differs: %s vs %s", first, second)
	}
	want, _ := json.Marshal(DefaultSentiment())
	if string(first) != string(want) {
		t.Fatalf("unexpected default: %s", first)
	}
}

func TestAnalyzeInvalidUTF8ReturnsDefault(t *testing.T) {
	got := NewAnalyzer().Analyze("\xff\xfe", "en")
	if got.Sentiment != SentimentNeutral || got.Urgency != UrgencyMedium || got.Satisfaction != 3 {
		t.Fatalf("unexpected result: %#v", got)
	}
}

func TestAnalyzeEscalatesAngryUrgent(t *testing.T) {
	got := NewAnalyzer().Analyze("I am angry, this is terrible and I need power back immediately", "en")
	if got.Sentiment != SentimentNegative {
		t.Fatalf("expected negative, got %s", got.Sentiment)
	}
	if got.Urgency != UrgencyHigh {
		t.Fatalf("expected high urgency, got %s", got.Urgency)
	}
	if !got.Escalate {
		t.Fatalf("expected escalation")
	}
}

func TestAnalyzeNoEscalationWithoutAnger(t *testing.T) {
	got := NewAnalyzer().Analyze("terrible service, fix it immediately", "en")
	if got.Sentiment != SentimentNegative {
		t.Fatalf("expected negative, got %s", got.Sentiment)
	}
	if got.Escalate {
		t.Fatalf("expected no escalation without anger")
	}
}

func TestAnalyzeUrgencyTierOrder(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"there is smoke and it is urgent", UrgencyCritical},
		{"please call me today", UrgencyHigh},
		{"I have been waiting", UrgencyMedium},
		{"just a question", UrgencyLow},
		{"hello", UrgencyMedium},
	}
	analyzer := NewAnalyzer()
	for _, tc := range cases {
		if got := analyzer.Analyze(tc.text, "en").Urgency; got != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.text, tc.want, got)
		}
	}
}

func TestAnalyzeSatisfactionClamped(t *testing.T) {
	got := NewAnalyzer().Analyze("terrible awful horrible worst useless ridiculous", "en")
	if got.Satisfaction != 1 {
		t.Fatalf("expected satisfaction 1, got %d", got.Satisfaction)
	}
	if got.Confidence != 1.0 {
		t.Fatalf("expected confidence capped at 1.0, got %v", got.Confidence)
	}
}

func TestAnalyzeArabic(t *testing.T) {
	got := NewAnalyzer().Analyze("أنا غاضب والخدمة سيئة، الأمر عاجل", "ar")
	if got.Sentiment != SentimentNegative {
		t.Fatalf("expected negative, got %s", got.Sentiment)
	}
	if got.Urgency != UrgencyHigh {
		t.Fatalf("expected high urgency, got %s", got.Urgency)
	}
	if !got.Escalate {
		t.Fatalf("expected escalation")
	}
}

func TestAnalyzeEmotionOrder(t *testing.T) {
	got := NewAnalyzer().Analyze("thanks, I was worried but now I am glad", "en")
	want := []string{"worried", "happy", "grateful"}
	if len(got.Emotions) != len(want) {
		t.Fatalf("expected %v, got %v", want, got.Emotions)
	}
	for i := range want {
		if got.Emotions[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got.Emotions)
		}
	}
}
