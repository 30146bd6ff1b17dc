package referral

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const codePrefix = "ref_"

// Link builds the deep link a user shares: the /start payload carries the
// referrer ID, base64-encoded.
func Link(userID int64, botUsername string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(strconv.FormatInt(userID, 10)))
	return fmt.Sprintf("https://t.me/%s?start=%s%s", botUsername, codePrefix, encoded)
}

// DecodeStartCode extracts the referrer ID from a /start payload. Returns
// (0, false) for anything that is not a well-formed referral code; a broken
// code is not an error, the user simply joined without one.
func DecodeStartCode(code string) (int64, bool) {
	if !strings.HasPrefix(code, codePrefix) {
		return 0, false
	}
	raw, err := base64.StdEncoding.DecodeString(code[len(codePrefix):])
	if err != nil {
		return 0, false
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
