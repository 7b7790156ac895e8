package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const paymentRefPrefix = "zeus-sub"

// PaymentReference encodes the subscriber identity into the external
// reference of a payment, so an asynchronous notification can be attributed
// without keeping local payment state. Telegram usernames cannot contain
// colons, which keeps the encoding unambiguous.
func PaymentReference(userID int64, planKey, username string) string {
	return strings.Join([]string{
		paymentRefPrefix,
		strconv.FormatInt(userID, 10),
		planKey,
		username,
		uuid.NewString(),
	}, ":")
}

// ParsePaymentReference decodes a reference built by PaymentReference.
func ParsePaymentReference(ref string) (userID int64, planKey, username string, err error) {
	parts := strings.Split(ref, ":")
	if len(parts) != 5 || parts[0] != paymentRefPrefix {
		return 0, "", "", fmt.Errorf("unrecognized payment reference %q", ref)
	}
	userID, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, "", "", fmt.Errorf("payment reference %q: bad user id: %w", ref, err)
	}
	return userID, parts[2], parts[3], nil
}
