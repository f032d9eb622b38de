package auth

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// GravatarURL returns the avatar URL for an email: 200px, rated pg, falling
// back to the "mystery person" silhouette.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}
