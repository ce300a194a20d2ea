package detect

import (
	"testing"

	"golang.org/x/text/language"
)

func TestClassify_ShortInputNeverMatches(t *testing.T) {
	c := New()
	for _, in := range []string{"", "ок", "да", "ok", "тест", "hold"} {
		d := c.Classify(in)
		if d.HasCommitment {
			t.Fatalf("%q: short input must never match, got %+v", in, d)
		}
	}
}

func TestClassify_NoMatchYieldsEmptyVerdict(t *testing.T) {
	c := New()
	d := c.Classify("добрый день, чем могу помочь?")
	if d.HasCommitment || d.Type != "" || d.MatchedText != "" {
		t.Fatalf("unexpected verdict for neutral text: %+v", d)
	}
}

func TestClassify_RussianTimeWithCount(t *testing.T) {
	c := New()
	d := c.Classify("Будет готово через 10 минут")
	if !d.HasCommitment || d.Type != TypeTime || d.IsVague {
		t.Fatalf("unexpected verdict: %+v", d)
	}
	if d.MatchedText != "10 минут" {
		t.Fatalf("expected widened match %q, got %q", "10 минут", d.MatchedText)
	}
	if d.TimeframeHint != "10 минут" {
		t.Fatalf("expected timeframe hint, got %q", d.TimeframeHint)
	}
	if d.Variant != LangRussian {
		t.Fatalf("expected Russian variant, got %v", d.Variant)
	}
}

func TestClassify_UnitWordWithoutNumberStaysVague(t *testing.T) {
	c := New()

	// "минуточку" contains the unit stem "минут" but no digit run; the time
	// rule must not fire and the vague rule takes over.
	d := c.Classify("минуточку, пожалуйста")
	if !d.HasCommitment || d.Type != TypeVague || !d.IsVague {
		t.Fatalf("unexpected verdict: %+v", d)
	}
	if d.TimeframeHint != "" {
		t.Fatalf("vague detections carry no timeframe hint, got %q", d.TimeframeHint)
	}

	d = c.Classify("подождите минуточку")
	if d.Type != TypeVague {
		t.Fatalf("long left token must not count as a number: %+v", d)
	}
}

func TestClassify_PriorityTimeOverActionOverVague(t *testing.T) {
	c := New()

	// All three signal classes in one message: time wins.
	d := c.Classify("сейчас проверю и отвечу через 10 минут")
	if d.Type != TypeTime {
		t.Fatalf("time must win, got %+v", d)
	}

	// Action beats vague.
	d = c.Classify("сейчас проверю логи")
	if d.Type != TypeAction {
		t.Fatalf("action must beat vague, got %+v", d)
	}

	// Vague alone.
	d = c.Classify("сейчас, ожидайте")
	if d.Type != TypeVague || !d.IsVague {
		t.Fatalf("expected vague, got %+v", d)
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	c := New()
	d := c.Classify("ЗАВТРА УТРОМ всё починим")
	if d.Type != TypeTime || d.MatchedText != "завтра утром" {
		t.Fatalf("unexpected verdict: %+v", d)
	}
}

func TestClassify_UzbekLatinVariants(t *testing.T) {
	c := New()

	d := c.Classify("ertaga ertalab javob beraman")
	if d.Type != TypeTime || d.Variant != LangUzbekLatin {
		t.Fatalf("unexpected verdict: %+v", d)
	}
	if d.TimeframeHint != "ertaga ertalab" {
		t.Fatalf("unexpected hint: %q", d.TimeframeHint)
	}

	d = c.Classify("hozir tekshiraman")
	if d.Type != TypeAction {
		t.Fatalf("action must beat vague hozir: %+v", d)
	}

	d = c.Classify("5 daqiqada tayyor bo'ladi")
	if d.Type != TypeTime || d.MatchedText != "5 daqiqada" {
		t.Fatalf("unexpected verdict: %+v", d)
	}

	d = c.Classify("kutib turing, iltimos")
	if d.Type != TypeVague {
		t.Fatalf("expected vague, got %+v", d)
	}
}

func TestClassify_UzbekCyrillicVariants(t *testing.T) {
	c := New()

	d := c.Classify("эртага эрталаб жавоб бераман")
	if d.Type != TypeTime || d.Variant != LangUzbekCyrill {
		t.Fatalf("unexpected verdict: %+v", d)
	}

	d = c.Classify("бироз кутинг, илтимос")
	if d.Type != TypeVague || d.Variant != LangUzbekCyrill {
		t.Fatalf("unexpected verdict: %+v", d)
	}
}

func TestClassify_EnglishFallback(t *testing.T) {
	c := New()

	d := c.Classify("I'll check and get back to you tomorrow morning")
	if d.Type != TypeTime || d.TimeframeHint != "tomorrow morning" {
		t.Fatalf("unexpected verdict: %+v", d)
	}

	d = c.Classify("we'll fix this for you")
	if d.Type != TypeAction || d.Variant != LangEnglish {
		t.Fatalf("unexpected verdict: %+v", d)
	}

	d = c.Classify("hold on please")
	if d.Type != TypeVague {
		t.Fatalf("unexpected verdict: %+v", d)
	}

	d = c.Classify("done in 30 minutes")
	if d.Type != TypeTime || d.MatchedText != "30 minutes" {
		t.Fatalf("unexpected verdict: %+v", d)
	}
}

func TestClassify_HourCountWidened(t *testing.T) {
	c := New()
	d := c.Classify("исправим через 2 часа")
	if d.Type != TypeTime || d.MatchedText != "2 часа" {
		t.Fatalf("unexpected verdict: %+v", d)
	}
}

func TestNew_WithExtraRules(t *testing.T) {
	c := New(WithExtraRules(LangRussian, TypeAction, "согласую"))
	base := New()
	if c.RuleCount() != base.RuleCount()+1 {
		t.Fatalf("expected one extra rule, got %d vs %d", c.RuleCount(), base.RuleCount())
	}
	d := c.Classify("согласую с руководителем")
	if d.Type != TypeAction {
		t.Fatalf("extra rule must match: %+v", d)
	}
}

func TestNew_WithExtraRules_NewVariantTag(t *testing.T) {
	kk := language.MustParse("kk")
	c := New(WithExtraRules(kk, TypeVague, "қазір"))
	found := false
	for _, v := range c.Variants() {
		if v == kk {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected new variant tag in %v", c.Variants())
	}
}

func TestVariants_DefaultOrder(t *testing.T) {
	c := New()
	vs := c.Variants()
	if len(vs) != 4 {
		t.Fatalf("expected 4 built-in variants, got %d", len(vs))
	}
	if vs[0] != LangRussian || vs[1] != LangUzbekLatin || vs[2] != LangUzbekCyrill || vs[3] != LangEnglish {
		t.Fatalf("unexpected variant order: %v", vs)
	}
}
