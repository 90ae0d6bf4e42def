package chatbot

import "regexp"

// Patterns are matched against folded text (lowercase, no accents).
var spanishPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(hola|buen(os|as) (dias|tardes|noches))\b`),
	regexp.MustCompile(`\b(gracias|por favor)\b`),
	regexp.MustCompile(`\b(quiero|quisiera|busco|buscando|necesito|me interesa)\b`),
	regexp.MustCompile(`\b(rentar|renta|alquilar|alquiler|comprar|vender)\b`),
	regexp.MustCompile(`\b(casa|departamento|depa|recamaras?|terreno|propiedad)\b`),
	regexp.MustCompile(`\b(donde|cuanto|cuando|precio|zona)\b`),
	regexp.MustCompile(`\b(tengo|mi|una|para|con|en)\b`),
}

var englishPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(hello|hi|hey|good (morning|afternoon|evening))\b`),
	regexp.MustCompile(`\b(thanks|thank you|please)\b`),
	regexp.MustCompile(`\b(i want|i'd like|looking for|i need|interested in)\b`),
	regexp.MustCompile(`\b(rent|buy|sell|lease|purchase)\b`),
	regexp.MustCompile(`\b(house|apartment|condo|bedrooms?|lot|property)\b`),
	regexp.MustCompile(`\b(where|how much|when|price|area)\b`),
	regexp.MustCompile(`\b(i have|my|the|for|with|in)\b`),
}

// ScoreLanguage counts how many Spanish and English patterns match text.
func ScoreLanguage(text string) (es, en int) {
	folded := foldText(text)
	for _, pat := range spanishPatterns {
		if pat.MatchString(folded) {
			es++
		}
	}
	for _, pat := range englishPatterns {
		if pat.MatchString(folded) {
			en++
		}
	}
	return es, en
}

// DetectLanguage returns English only when it strictly outscores Spanish.
func DetectLanguage(text string) Language {
	es, en := ScoreLanguage(text)
	if en > es {
		return LanguageEN
	}
	return LanguageES
}

// detectDecisive reports a language only when the scores differ, so neutral
// input such as a quick-reply token or a phone number keeps the current language.
func detectDecisive(text string) (Language, bool) {
	if isQuickReplyValue(text) {
		return "", false
	}
	es, en := ScoreLanguage(text)
	switch {
	case en > es:
		return LanguageEN, true
	case es > en:
		return LanguageES, true
	default:
		return "", false
	}
}
