package cluster

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// namespace scopes cluster IDs so they never collide with other v5 UUIDs
// derived from the same member IDs.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/NERVsystems/photogeo/cluster"))

// StableID returns a name-based (v5) UUID for the cluster's membership.
// Member order does not matter, so the same set of photos always maps to
// the same ID across requests.
func StableID[T any](c GeoCluster[T]) string {
	ids := c.IDs()
	slices.Sort(ids)
	return uuid.NewSHA1(namespace, []byte(strings.Join(ids, "\x00"))).String()
}
