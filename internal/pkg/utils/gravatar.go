package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

const defaultAvatarSize = 200

// GravatarURL builds the avatar URL for an email address. Gravatar hashes
// the trimmed, lowercased address with MD5; "d=mp" falls back to the
// generic silhouette for unknown addresses.
func GravatarURL(email string, size int) string {
	if size <= 0 {
		size = defaultAvatarSize
	}
	normalized := strings.ToLower(strings.TrimSpace(email))
	hash := md5.Sum([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=mp", hash, size)
}
