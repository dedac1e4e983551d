// Package i18n holds the static notification strings in the languages
// the app ships with. English is the fallback; every key must have an
// English entry.
package i18n

// DefaultLanguage is used when a user's language has no entry.
const DefaultLanguage = "en"

// Message keys.
const (
	KeyBookingCancelled                = "bookingCancelled"
	KeyBookingCancelNoDriver           = "bookingCancelString"
	KeyBookingCancelNotConfirmedInTime = "bookingCancelNotConfirmInTimeString"
	KeyBookingConfirmationRequired     = "bookingConfirmationRequired"
	KeyBookingConfirmationRequiredBody = "bookingConfirmationRequiredMsg"
)

var translations = map[string]map[string]string{
	"en": {
		KeyBookingCancelled:                "Booking Cancelled",
		KeyBookingCancelNoDriver:           "Your booking has been canceled due to no response from driver.",
		KeyBookingCancelNotConfirmedInTime: "Your booking has been canceled because it wasn’t confirmed in time.",
		KeyBookingConfirmationRequired:     "Booking Confirmation Required",
		KeyBookingConfirmationRequiredBody: "Your booking was scheduled. Please review and confirm booking time.",
	},
	"mg": {
		KeyBookingCancelled:                "Nofoanana ny famandrihana",
		KeyBookingCancelNoDriver:           "Nofoanana ny famandrihanao satria tsy nisy sofera namaly",
		KeyBookingCancelNotConfirmedInTime: "Nofoanana ny famandrihanao satria tsy voamarika ara-potoana.",
		KeyBookingConfirmationRequired:     "Mila fanamafisana ny famandrihana",
		KeyBookingConfirmationRequiredBody: "Voalahatra ny famandrihanao. Azafady, jereo ary hamafiso ny ora hanaovana ny famandihana",
	},
	"fr": {
		KeyBookingCancelled:                "Réservation annulée",
		KeyBookingCancelNoDriver:           "Votre réservation a été annulée car aucun chauffeur n'a répondu.",
		KeyBookingCancelNotConfirmedInTime: "Votre réservation a été annulée car elle n'a pas été confirmée à temps.",
		KeyBookingConfirmationRequired:     "Confirmation de réservation requise",
		KeyBookingConfirmationRequiredBody: "Votre réservation a été programmée. Veuillez vérifier et confirmer l'heure de votre réservation.",
	},
}

// Translate returns the localized string for key, falling back to the
// default language when the language or the key has no entry.
func Translate(key, lang string) string {
	if table, ok := translations[lang]; ok {
		if s, ok := table[key]; ok {
			return s
		}
	}
	return translations[DefaultLanguage][key]
}

// DefaultKeys lists every key present in the default-language table.
func DefaultKeys() []string {
	keys := make([]string, 0, len(translations[DefaultLanguage]))
	for k := range translations[DefaultLanguage] {
		keys = append(keys, k)
	}
	return keys
}
