package chatbot

import "testing"

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text string
		want Language
	}{
		{"quiero rentar", LanguageES},
		{"Hola, busco un departamento", LanguageES},
		{"I want to rent an apartment", LanguageEN},
		{"Hello! Looking for a house to buy", LanguageEN},
		{"", LanguageES},
		{"+52 998 123 4567", LanguageES},
		{"rent_long", LanguageES},
		{"hi", LanguageEN},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.text); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestDetectDecisive(t *testing.T) {
	if _, ok := detectDecisive("buy"); ok {
		t.Fatalf("quick-reply token should not be decisive")
	}
	if lang, ok := detectDecisive("I need a house"); !ok || lang != LanguageEN {
		t.Fatalf("expected decisive english, got %q %v", lang, ok)
	}
	if lang, ok := detectDecisive("necesito una casa"); !ok || lang != LanguageES {
		t.Fatalf("expected decisive spanish, got %q %v", lang, ok)
	}
}

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		text string
		want Intent
	}{
		{"change to english", IntentLangEN},
		{"¿Hablas inglés?", IntentLangEN},
		{"lang_en", IntentLangEN},
		{"en español por favor", IntentLangES},
		{"lang_es", IntentLangES},
		{"list_property", IntentListProperty},
		{"Quiero poner en renta mi departamento", IntentListProperty},
		{"Soy propietario", IntentListProperty},
		{"I want to sell my condo", IntentListProperty},
		{"buy", IntentBuy},
		{"quiero comprar una casa", IntentBuy},
		{"looking to invest", IntentBuy},
		{"rent_short", IntentRentShort},
		{"renta vacacional", IntentRentShort},
		{"algo por noche", IntentRentShort},
		{"vacation rental", IntentRentShort},
		{"rent_long", IntentRentLong},
		{"quiero rentar", IntentRentLong},
		{"busco alquiler", IntentRentLong},
		{"I want to rent", IntentRentLong},
		{"other", IntentOther},
		{"tengo una pregunta", IntentOther},
		{"I have a question", IntentOther},
		{"Ana López", IntentNone},
		{"", IntentNone},
		{"rent_budget_2", IntentNone},
		{"owner_rent", IntentNone},
	}
	for _, tt := range tests {
		if got := DetectIntent(tt.text); got != tt.want {
			t.Errorf("DetectIntent(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestKeywordMatchers(t *testing.T) {
	for _, s := range []string{"confirm", "Confirmar", "sí", "Si, correcto", "YES", "ok", "de acuerdo"} {
		if !isAffirmative(s) {
			t.Errorf("expected %q to be affirmative", s)
		}
	}
	for _, s := range []string{"edit", "no", "maybe", "sin cambios"} {
		if isAffirmative(s) {
			t.Errorf("expected %q not to be affirmative", s)
		}
	}
	for _, s := range []string{"edit", "Editar", "no", "quiero corregir algo", "start over"} {
		if !isRestartToken(s) {
			t.Errorf("expected %q to restart", s)
		}
	}
	for _, s := range []string{"finish", "No, gracias", "eso es todo", "no thanks", "that's all"} {
		if !isDecline(s) {
			t.Errorf("expected %q to decline", s)
		}
	}
	if isDecline("other") {
		t.Errorf("other should not decline")
	}
	for _, s := range []string{"owner_sale", "Quiero vender", "sale"} {
		if !isOwnerSale(s) {
			t.Errorf("expected %q to be a sale", s)
		}
	}
	if isOwnerSale("owner_rent") {
		t.Errorf("owner_rent is not a sale")
	}
	if !isYes("Sí, un perro") || !isYes("yes") || isYes("sin mascotas") || isYes("no") {
		t.Errorf("unexpected yes matching")
	}
}

func TestPhoneValidation(t *testing.T) {
	valid := []string{"+529981234567", "998 123 4567", "(998) 123-4567", "+1 415.555.0100", "9981234567"}
	for _, s := range valid {
		if !IsValidPhone(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	invalid := []string{"abc", "", "12345", "+52 998 abc 4567", "1234567890123456", "++529981234567"}
	for _, s := range invalid {
		if IsValidPhone(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}

	normalized := map[string]string{
		"+52 (998) 123-4567": "+529981234567",
		"998.123.4567":       "9981234567",
		" +1 415 555 0100 ":  "+14155550100",
	}
	for in, want := range normalized {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}
