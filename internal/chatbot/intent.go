package chatbot

import "regexp"

// Intent is the high-level purpose detected in a visitor message.
type Intent string

const (
	IntentNone         Intent = ""
	IntentLangEN       Intent = "lang_en"
	IntentLangES       Intent = "lang_es"
	IntentListProperty Intent = "list_property"
	IntentBuy          Intent = "buy"
	IntentRentShort    Intent = "rent_short"
	IntentRentLong     Intent = "rent_long"
	IntentOther        Intent = "other"
)

// IsLanguageSwitch reports whether the intent asks to change language.
func (i Intent) IsLanguageSwitch() bool {
	return i == IntentLangEN || i == IntentLangES
}

type intentRule struct {
	intent   Intent
	patterns []*regexp.Regexp
}

// intentRules are evaluated in order against folded text; the first match wins.
var intentRules = []intentRule{
	{IntentLangEN, []*regexp.Regexp{
		regexp.MustCompile(`^lang_en$`),
		regexp.MustCompile(`\b(english|ingles)\b`),
	}},
	{IntentLangES, []*regexp.Regexp{
		regexp.MustCompile(`^lang_es$`),
		regexp.MustCompile(`\b(spanish|espanol|castellano)\b`),
	}},
	{IntentListProperty, []*regexp.Regexp{
		regexp.MustCompile(`^list_property$`),
		regexp.MustCompile(`\b(publicar|anunciar|listar|ofrecer) (mi|una|un)\b`),
		regexp.MustCompile(`\bponer (mi .+ )?en (renta|venta|alquiler)\b`),
		regexp.MustCompile(`\b(soy (el |la )?(propietari[oa]|duen[oa])|propietari[oa]s?|duen[oa]s?)\b`),
		regexp.MustCompile(`\b(vender|vendo) (mi|una|un)\b`),
		regexp.MustCompile(`\b(list|sell|rent out|advertise) my\b`),
		regexp.MustCompile(`\b(i own|i'?m the owner|owners?|landlord)\b`),
	}},
	{IntentBuy, []*regexp.Regexp{
		regexp.MustCompile(`^buy$`),
		regexp.MustCompile(`\b(comprar|compra|adquirir|invertir|inversion)\b`),
		regexp.MustCompile(`\b(buy|buying|purchase|invest|investment)\b`),
	}},
	{IntentRentShort, []*regexp.Regexp{
		regexp.MustCompile(`^rent_short$`),
		regexp.MustCompile(`\b(vacacional(es)?|vacaciones|temporada|corto plazo|airbnb)\b`),
		regexp.MustCompile(`\bpor (noche|dia|dias|semana|fin de semana)\b`),
		regexp.MustCompile(`\b(vacation|holiday|short[- ]term|nightly|weekend|per night)\b`),
	}},
	{IntentRentLong, []*regexp.Regexp{
		regexp.MustCompile(`^rent_long$`),
		regexp.MustCompile(`\b(rentar|renta|rento|alquilar|alquiler|arrendar|arrendamiento|largo plazo)\b`),
		regexp.MustCompile(`\b(rent|renting|rental|lease|long[- ]term)\b`),
	}},
	{IntentOther, []*regexp.Regexp{
		regexp.MustCompile(`^other$`),
		regexp.MustCompile(`\b(pregunta|duda|informacion|otra cosa|otro tema|ayuda)\b`),
		regexp.MustCompile(`\b(question|help|information|something else|other)\b`),
	}},
}

// DetectIntent classifies text in fixed priority order. It returns IntentNone
// when nothing matches so callers can fall back to a step default.
func DetectIntent(text string) Intent {
	folded := foldText(text)
	if folded == "" {
		return IntentNone
	}
	for _, rule := range intentRules {
		for _, pat := range rule.patterns {
			if pat.MatchString(folded) {
				return rule.intent
			}
		}
	}
	return IntentNone
}

var (
	ownerSalePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^owner_sale$`),
		regexp.MustCompile(`\b(venta|vender|vendo|sale|sell|selling)\b`),
	}
	restartPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(edit|no)$`),
		regexp.MustCompile(`\b(editar|corregir|cambiar|modificar|reiniciar|empezar de nuevo|volver a empezar)\b`),
		regexp.MustCompile(`\b(change|correct it|fix|restart|start over)\b`),
		regexp.MustCompile(`^no\b`),
	}
	affirmativePattern = regexp.MustCompile(`^(confirm|confirmar|confirmo|si|yes|correcto|correct|ok|okay|de acuerdo)\b`)
	declinePatterns    = []*regexp.Regexp{
		regexp.MustCompile(`^(finish|no|nope|nada|listo|bye|adios)\b`),
		regexp.MustCompile(`\b(no gracias|no, gracias|eso es todo|es todo|terminar|finalizar)\b`),
		regexp.MustCompile(`\b(no thanks|no, thanks|that'?s all|nothing else|i'?m done|goodbye)\b`),
	}
	yesPattern = regexp.MustCompile(`^(yes|si)\b`)
)

func matchAny(patterns []*regexp.Regexp, text string) bool {
	folded := foldText(text)
	if folded == "" {
		return false
	}
	for _, pat := range patterns {
		if pat.MatchString(folded) {
			return true
		}
	}
	return false
}

func isOwnerSale(text string) bool { return matchAny(ownerSalePatterns, text) }

func isRestartToken(text string) bool { return matchAny(restartPatterns, text) }

func isDecline(text string) bool { return matchAny(declinePatterns, text) }

// isAffirmative reports whether text confirms the summary shown at a confirm step.
func isAffirmative(text string) bool {
	return affirmativePattern.MatchString(foldText(text))
}

func isYes(text string) bool {
	return yesPattern.MatchString(foldText(text))
}
