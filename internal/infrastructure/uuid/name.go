package uuid

import (
	"strings"

	guuid "github.com/google/uuid"
)

// EventNamespace namespace of event notification ids
var EventNamespace = guuid.NewSHA1(guuid.NameSpaceURL, []byte("urn:learning-engine:event"))

// FromName derive a stable v5 uuid from the given parts, same parts always yield the same id
func FromName(namespace guuid.UUID, parts ...string) string {
	return guuid.NewSHA1(namespace, []byte(strings.Join(parts, "\x00"))).String()
}
