package sanitizer

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const phoneRegion = "PK"

// rePakistaniMobile accepts the two forms customers actually type: the
// international +92 3XX form and the local 03XX form, nine digits after
// the 3 either way.
var rePakistaniMobile = regexp.MustCompile(`^(?:\+92|0)3\d{9}$`)

// ValidPhone reports whether phone matches the accepted mobile pattern.
// Spaces and dashes are stripped before matching.
func ValidPhone(phone string) bool {
	return rePakistaniMobile.MatchString(stripSeparators(phone))
}

// NormalizePhone converts an accepted mobile number to E.164 (+923…).
// Returns the empty string when the input does not parse.
func NormalizePhone(phone string) string {
	phone = stripSeparators(phone)
	if phone == "" || !rePakistaniMobile.MatchString(phone) {
		return ""
	}

	parsed, err := phonenumbers.Parse(phone, phoneRegion)
	if err != nil {
		return ""
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

func stripSeparators(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	return phone
}
