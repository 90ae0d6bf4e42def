package chatbot

// messageKey addresses a piece of copy independently of the step showing it,
// so one prompt can serve several sub-flows.
type messageKey string

const (
	msgGreetingDefault   messageKey = "greeting_default"
	msgGreetingRentals   messageKey = "greeting_rentals"
	msgOperationType     messageKey = "operation_type"
	msgNoVacation        messageKey = "no_vacation"
	msgOwnerType         messageKey = "owner_type"
	msgAskName           messageKey = "ask_name"
	msgAskPhone          messageKey = "ask_phone"
	msgPhoneRetry        messageKey = "phone_retry"
	msgOwnerZone         messageKey = "owner_zone"
	msgSearchZone        messageKey = "search_zone"
	msgOwnerPropertyType messageKey = "owner_property_type"
	msgBuyPropertyType   messageKey = "buy_property_type"
	msgOwnerBedrooms     messageKey = "owner_bedrooms"
	msgRentBedrooms      messageKey = "rent_bedrooms"
	msgOwnerRentPrice    messageKey = "owner_rent_price"
	msgOwnerSalePrice    messageKey = "owner_sale_price"
	msgRentBudget        messageKey = "rent_budget"
	msgBuyBudget         messageKey = "buy_budget"
	msgPaymentMethod     messageKey = "payment_method"
	msgMoveDate          messageKey = "move_date"
	msgPets              messageKey = "pets"
	msgOwnerComplete     messageKey = "owner_complete"
	msgRentComplete      messageKey = "rent_complete"
	msgBuyComplete       messageKey = "buy_complete"
	msgOtherHelp         messageKey = "other_help"
	msgComplete          messageKey = "complete"
	msgError             messageKey = "error"

	msgConfirmIntro    messageKey = "confirm_intro"
	msgConfirmQuestion messageKey = "confirm_question"
	msgNotProvided     messageKey = "not_provided"
	msgYes             messageKey = "yes"
	msgNo              messageKey = "no"

	msgLabelName          messageKey = "label_name"
	msgLabelPhone         messageKey = "label_phone"
	msgLabelZone          messageKey = "label_zone"
	msgLabelPropertyType  messageKey = "label_property_type"
	msgLabelBedrooms      messageKey = "label_bedrooms"
	msgLabelDesiredPrice  messageKey = "label_desired_price"
	msgLabelBudget        messageKey = "label_budget"
	msgLabelPaymentMethod messageKey = "label_payment_method"
	msgLabelMoveDate      messageKey = "label_move_date"
	msgLabelPets          messageKey = "label_pets"
	msgLabelOperation     messageKey = "label_operation"
	msgLabelEmail         messageKey = "label_email"
	msgLabelProperty      messageKey = "label_property"
	msgLabelCondominium   messageKey = "label_condominium"
	msgLabelSourcePage    messageKey = "label_source_page"
	msgLabelConversation  messageKey = "label_conversation"
	msgNotesHeader        messageKey = "notes_header"

	msgOperationOwnerRent messageKey = "operation_owner_rent"
	msgOperationOwnerSale messageKey = "operation_owner_sale"
	msgOperationRent      messageKey = "operation_rent"
	msgOperationBuy       messageKey = "operation_buy"
)

var copyTable = map[Language]map[messageKey]string{
	LanguageES: {
		msgGreetingDefault:   "¡Hola! Soy el asistente virtual de %s. ¿En qué te puedo ayudar hoy? Puedo ayudarte a rentar, comprar o publicar tu propiedad.",
		msgGreetingRentals:   "¡Bienvenido a %s! Te ayudo a encontrar tu próximo hogar en renta. ¿Qué estás buscando?",
		msgOperationType:     "¿Qué te gustaría hacer? Elige una opción o escríbenos.",
		msgNoVacation:        "Por el momento no manejamos rentas vacacionales ni de corto plazo. ¿Te interesa una renta a largo plazo o comprar una propiedad?",
		msgOwnerType:         "¡Excelente! ¿Quieres rentar o vender tu propiedad?",
		msgAskName:           "¿Cuál es tu nombre completo?",
		msgAskPhone:          "¿A qué número de teléfono te podemos contactar? (WhatsApp de preferencia)",
		msgPhoneRetry:        "Ese número no parece válido. Escríbelo con lada, por ejemplo +52 998 123 4567.",
		msgOwnerZone:         "¿En qué zona se encuentra tu propiedad?",
		msgSearchZone:        "¿En qué zona te gustaría vivir?",
		msgOwnerPropertyType: "¿Qué tipo de propiedad es?",
		msgBuyPropertyType:   "¿Qué tipo de propiedad buscas?",
		msgOwnerBedrooms:     "¿Cuántas recámaras tiene?",
		msgRentBedrooms:      "¿Cuántas recámaras necesitas?",
		msgOwnerRentPrice:    "¿Cuánto te gustaría recibir de renta mensual? (MXN)",
		msgOwnerSalePrice:    "¿En cuánto te gustaría vender tu propiedad? (MXN)",
		msgRentBudget:        "¿Cuál es tu presupuesto mensual de renta?",
		msgBuyBudget:         "¿Cuál es tu presupuesto de compra?",
		msgPaymentMethod:     "¿Cómo planeas pagar?",
		msgMoveDate:          "¿Para cuándo necesitas mudarte?",
		msgPets:              "¿Tienes mascotas?",
		msgOwnerComplete:     "¡Gracias! Un asesor revisará tu propiedad y te contactará muy pronto. ¿Te puedo ayudar con algo más?",
		msgRentComplete:      "¡Gracias! Un asesor te contactará con opciones de renta que se ajusten a lo que buscas. ¿Te puedo ayudar con algo más?",
		msgBuyComplete:       "¡Gracias! Un asesor te contactará con propiedades en venta para ti. ¿Te puedo ayudar con algo más?",
		msgOtherHelp:         "Cuéntame, ¿en qué más te puedo ayudar? También puedes elegir una opción del menú.",
		msgComplete:          "¡Gracias por escribirnos! Que tengas un excelente día.",
		msgError:             "Lo siento, ocurrió un problema al procesar tu mensaje. Por favor inténtalo de nuevo.",

		msgConfirmIntro:    "Por favor confirma tus datos:",
		msgConfirmQuestion: "¿Es correcto?",
		msgNotProvided:     "No proporcionado",
		msgYes:             "Sí",
		msgNo:              "No",

		msgLabelName:          "Nombre",
		msgLabelPhone:         "Teléfono",
		msgLabelZone:          "Zona",
		msgLabelPropertyType:  "Tipo de propiedad",
		msgLabelBedrooms:      "Recámaras",
		msgLabelDesiredPrice:  "Precio deseado",
		msgLabelBudget:        "Presupuesto",
		msgLabelPaymentMethod: "Forma de pago",
		msgLabelMoveDate:      "Fecha de mudanza",
		msgLabelPets:          "Mascotas",
		msgLabelOperation:     "Operación",
		msgLabelEmail:         "Correo",
		msgLabelProperty:      "Propiedad",
		msgLabelCondominium:   "Condominio",
		msgLabelSourcePage:    "Página de origen",
		msgLabelConversation:  "Conversación",
		msgNotesHeader:        "Lead capturado por el chatbot del sitio web.",

		msgOperationOwnerRent: "Rentar mi propiedad",
		msgOperationOwnerSale: "Vender mi propiedad",
		msgOperationRent:      "Rentar",
		msgOperationBuy:       "Comprar",
	},
	LanguageEN: {
		msgGreetingDefault:   "Hi! I'm the %s virtual assistant. How can I help you today? I can help you rent, buy or list your property.",
		msgGreetingRentals:   "Welcome to %s! I'll help you find your next rental home. What are you looking for?",
		msgOperationType:     "What would you like to do? Pick an option or type your question.",
		msgNoVacation:        "We don't handle vacation or short-term rentals at the moment. Would you be interested in a long-term rental or buying a property?",
		msgOwnerType:         "Great! Do you want to rent out or sell your property?",
		msgAskName:           "What's your full name?",
		msgAskPhone:          "What phone number can we reach you at? (WhatsApp preferred)",
		msgPhoneRetry:        "That number doesn't look valid. Please include the country code, for example +52 998 123 4567.",
		msgOwnerZone:         "Which area is your property in?",
		msgSearchZone:        "Which area would you like to live in?",
		msgOwnerPropertyType: "What type of property is it?",
		msgBuyPropertyType:   "What type of property are you looking for?",
		msgOwnerBedrooms:     "How many bedrooms does it have?",
		msgRentBedrooms:      "How many bedrooms do you need?",
		msgOwnerRentPrice:    "How much monthly rent would you like to receive? (MXN)",
		msgOwnerSalePrice:    "What price would you like to sell your property for? (MXN)",
		msgRentBudget:        "What's your monthly rent budget?",
		msgBuyBudget:         "What's your purchase budget?",
		msgPaymentMethod:     "How are you planning to pay?",
		msgMoveDate:          "When do you need to move in?",
		msgPets:              "Do you have pets?",
		msgOwnerComplete:     "Thank you! An agent will review your property and contact you shortly. Is there anything else I can help you with?",
		msgRentComplete:      "Thank you! An agent will contact you with rentals that match what you're looking for. Is there anything else I can help you with?",
		msgBuyComplete:       "Thank you! An agent will contact you with properties for sale. Is there anything else I can help you with?",
		msgOtherHelp:         "Tell me, what else can I help you with? You can also pick an option from the menu.",
		msgComplete:          "Thanks for reaching out! Have a great day.",
		msgError:             "Sorry, something went wrong while processing your message. Please try again.",

		msgConfirmIntro:    "Please confirm your details:",
		msgConfirmQuestion: "Is this correct?",
		msgNotProvided:     "Not provided",
		msgYes:             "Yes",
		msgNo:              "No",

		msgLabelName:          "Name",
		msgLabelPhone:         "Phone",
		msgLabelZone:          "Area",
		msgLabelPropertyType:  "Property type",
		msgLabelBedrooms:      "Bedrooms",
		msgLabelDesiredPrice:  "Desired price",
		msgLabelBudget:        "Budget",
		msgLabelPaymentMethod: "Payment method",
		msgLabelMoveDate:      "Move-in date",
		msgLabelPets:          "Pets",
		msgLabelOperation:     "Operation",
		msgLabelEmail:         "Email",
		msgLabelProperty:      "Property",
		msgLabelCondominium:   "Condominium",
		msgLabelSourcePage:    "Source page",
		msgLabelConversation:  "Conversation",
		msgNotesHeader:        "Lead captured by the website chatbot.",

		msgOperationOwnerRent: "Rent out my property",
		msgOperationOwnerSale: "Sell my property",
		msgOperationRent:      "Rent",
		msgOperationBuy:       "Buy",
	},
}

// copyText looks up a message, falling back to Spanish for unknown languages.
func copyText(lang Language, key messageKey) string {
	table, ok := copyTable[lang]
	if !ok {
		table = copyTable[LanguageES]
	}
	return table[key]
}
