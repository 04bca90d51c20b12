package domain

import "strings"

// KeySentinel stands in for an empty approver/PO-AFE/CC field so that keys
// built from partially filled headers stay comparable.
const KeySentinel = "_"

// billingKeySeparator joins the three normalized parts of a billing key
const billingKeySeparator = "::"

// normalizeKeyPart trims a free-text header field and substitutes the
// sentinel for empty values. Case is preserved deliberately: PO/AFE strings
// are matched literally, the way users typed them.
func normalizeKeyPart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return KeySentinel
	}
	return s
}

// BuildGroupingKey derives the canonical grouping key from the PO/AFE field
// alone. CC and approver do not participate: differing CC/approver strings
// must not fragment a ticket, but a differing PO/AFE must.
func BuildGroupingKey(poAfe string) string {
	return normalizeKeyPart(poAfe)
}

// BuildBillingKey derives the wider display/secondary key from all three
// header fields. Used only as a secondary match, never for primary grouping.
func BuildBillingKey(approver, poAfe, cc string) string {
	return normalizeKeyPart(approver) + billingKeySeparator +
		normalizeKeyPart(poAfe) + billingKeySeparator +
		normalizeKeyPart(cc)
}

// ParseBillingKey splits a billing key back into its approver, PO/AFE and
// CC parts, mapping sentinels back to empty strings. Inputs that are not
// billing keys come back as a bare PO/AFE value.
func ParseBillingKey(key string) (approver, poAfe, cc string) {
	parts := strings.Split(key, billingKeySeparator)
	unsentinel := func(s string) string {
		if s == KeySentinel {
			return ""
		}
		return s
	}
	if len(parts) != 3 {
		return "", unsentinel(strings.TrimSpace(key)), ""
	}
	return unsentinel(parts[0]), unsentinel(parts[1]), unsentinel(parts[2])
}

// SamePoAfe compares two raw PO/AFE strings the way duplicate-draft cleanup
// does: trimmed, case-insensitively.
func SamePoAfe(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
