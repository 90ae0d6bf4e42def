package chatbot

type option struct {
	value  string
	labels map[Language]string
}

func opt(value, es, en string) option {
	return option{value: value, labels: map[Language]string{LanguageES: es, LanguageEN: en}}
}

// catalog is a fixed set of quick-reply options.
type catalog []option

func (c catalog) quickReplies(lang Language) []QuickReply {
	out := make([]QuickReply, 0, len(c))
	for _, o := range c {
		out = append(out, QuickReply{ID: o.value, Label: o.labels[lang], Value: o.value})
	}
	return out
}

// label resolves a submitted value (or a label typed in either language) to
// the option label in lang.
func (c catalog) label(input string, lang Language) (string, bool) {
	folded := foldText(input)
	if folded == "" {
		return "", false
	}
	for _, o := range c {
		if folded == o.value {
			return o.labels[lang], true
		}
		for _, l := range o.labels {
			if folded == foldText(l) {
				return o.labels[lang], true
			}
		}
	}
	return "", false
}

func (c catalog) with(extra ...option) catalog {
	out := make(catalog, 0, len(c)+len(extra))
	out = append(out, c...)
	return append(out, extra...)
}

var (
	mainMenuCatalog = catalog{
		opt("rent_long", "Rentar", "Rent"),
		opt("buy", "Comprar", "Buy"),
		opt("list_property", "Publicar mi propiedad", "List my property"),
		opt("rent_short", "Renta vacacional", "Vacation rental"),
		opt("other", "Otra pregunta", "Other question"),
	}

	noVacationCatalog = catalog{
		opt("rent_long", "Renta a largo plazo", "Long-term rental"),
		opt("buy", "Comprar", "Buy"),
		opt("other", "Otra pregunta", "Other question"),
	}

	ownerTypeCatalog = catalog{
		opt("owner_rent", "Rentar mi propiedad", "Rent it out"),
		opt("owner_sale", "Vender mi propiedad", "Sell it"),
	}

	zoneCatalog = catalog{
		opt("zona_hotelera", "Zona Hotelera", "Hotel Zone"),
		opt("centro", "Centro", "Downtown"),
		opt("puerto_cancun", "Puerto Cancún", "Puerto Cancun"),
		opt("playa_del_carmen", "Playa del Carmen", "Playa del Carmen"),
		opt("tulum", "Tulum", "Tulum"),
		opt("other_zone", "Otra zona", "Other area"),
	}

	rentBudgetCatalog = catalog{
		opt("rent_budget_1", "Menos de $15,000 MXN", "Under $15,000 MXN"),
		opt("rent_budget_2", "$15,000 - $25,000 MXN", "$15,000 - $25,000 MXN"),
		opt("rent_budget_3", "$25,000 - $40,000 MXN", "$25,000 - $40,000 MXN"),
		opt("rent_budget_4", "Más de $40,000 MXN", "Over $40,000 MXN"),
	}

	buyBudgetCatalog = catalog{
		opt("buy_budget_1", "Menos de $2,000,000 MXN", "Under $2,000,000 MXN"),
		opt("buy_budget_2", "$2,000,000 - $4,000,000 MXN", "$2,000,000 - $4,000,000 MXN"),
		opt("buy_budget_3", "$4,000,000 - $8,000,000 MXN", "$4,000,000 - $8,000,000 MXN"),
		opt("buy_budget_4", "Más de $8,000,000 MXN", "Over $8,000,000 MXN"),
	}

	bedroomsCatalog = catalog{
		opt("bedrooms_studio", "Estudio", "Studio"),
		opt("bedrooms_1", "1 recámara", "1 bedroom"),
		opt("bedrooms_2", "2 recámaras", "2 bedrooms"),
		opt("bedrooms_3", "3 recámaras", "3 bedrooms"),
		opt("bedrooms_4", "4 o más recámaras", "4+ bedrooms"),
	}

	propertyTypeCatalog = catalog{
		opt("house", "Casa", "House"),
		opt("apartment", "Departamento", "Apartment"),
		opt("land", "Terreno", "Land"),
		opt("commercial", "Local comercial", "Commercial space"),
	}

	paymentCatalog = catalog{
		opt("cash", "Contado", "Cash"),
		opt("mortgage", "Crédito hipotecario", "Mortgage"),
		opt("infonavit", "Infonavit", "Infonavit"),
		opt("other_payment", "Otro", "Other"),
	}

	yesNoCatalog = catalog{
		opt("yes", "Sí", "Yes"),
		opt("no", "No", "No"),
	}

	confirmCatalog = catalog{
		opt("confirm", "Confirmar", "Confirm"),
		opt("edit", "Editar", "Edit"),
	}

	completeCatalog = catalog{
		opt("other", "Tengo otra pregunta", "I have another question"),
		opt("finish", "No, gracias", "No, thanks"),
	}

	finishOption = opt("finish", "Terminar", "Finish")
)

// languageToggle offers the language the conversation is not currently in.
func languageToggle(lang Language) option {
	if lang == LanguageEN {
		return opt("lang_es", "Español", "Español")
	}
	return opt("lang_en", "English", "English")
}

// fieldCatalog returns the option catalog backing a data-collection step.
func fieldCatalog(step Step) catalog {
	switch step.targetField() {
	case fieldZone:
		return zoneCatalog
	case fieldPropertyType:
		return propertyTypeCatalog
	case fieldBedrooms:
		return bedroomsCatalog
	case fieldPaymentMethod:
		return paymentCatalog
	case fieldPets:
		return yesNoCatalog
	case fieldConfirm:
		return confirmCatalog
	case fieldBudget:
		if step == StepBuyBudget {
			return buyBudgetCatalog
		}
		return rentBudgetCatalog
	}
	return nil
}

var quickReplyValues = buildQuickReplyValues()

func buildQuickReplyValues() map[string]struct{} {
	values := make(map[string]struct{})
	all := []catalog{
		mainMenuCatalog, noVacationCatalog, ownerTypeCatalog, zoneCatalog, rentBudgetCatalog,
		buyBudgetCatalog, bedroomsCatalog, propertyTypeCatalog, paymentCatalog, yesNoCatalog,
		confirmCatalog, completeCatalog, {finishOption, languageToggle(LanguageES), languageToggle(LanguageEN)},
	}
	for _, c := range all {
		for _, o := range c {
			values[o.value] = struct{}{}
		}
	}
	return values
}

// isQuickReplyValue reports whether text is exactly one of the option values.
func isQuickReplyValue(text string) bool {
	_, ok := quickReplyValues[foldText(text)]
	return ok
}
