// Package modules is the dispatch layer from a raw module key to the feature
// surface it serves. Keys are normalized once at the boundary; anything
// outside the known set is rejected, never silently defaulted.
package modules

import (
	"errors"

	"github.com/veritum/veritum-pro/internal/database/models"
	"github.com/veritum/veritum-pro/internal/permissions"
)

var ErrUnknownModule = errors.New("unknown module key")

// Key identifies one product suite.
type Key string

const (
	KeyNexus    Key = "nexus"    // case kanban
	KeyScriptor Key = "scriptor" // document drafting
	KeyAurum    Key = "aurum"    // billing
	KeyLumen    Key = "lumen"    // analytics
	KeyAtrium   Key = "atrium"   // client portal
)

// Keys lists every known module in display order.
func Keys() []Key {
	return []Key{KeyNexus, KeyScriptor, KeyAurum, KeyLumen, KeyAtrium}
}

// Surface describes what the frontend mounts for a module.
type Surface struct {
	Key       Key    `json:"key"`
	Name      string `json:"name"`
	Dashboard string `json:"dashboard"`
	Icon      string `json:"icon"`
}

// DashboardFor returns the dashboard variant for a role tier. The owner and
// admin tiers share the full variant; operators get the reduced one.
func (s Surface) DashboardFor(role models.Role) string {
	if role == models.RoleOperator {
		return s.Dashboard + "-operator"
	}
	return s.Dashboard
}

var surfaces = map[Key]Surface{
	KeyNexus:    {Key: KeyNexus, Name: "Nexus", Dashboard: "nexus-board", Icon: "kanban"},
	KeyScriptor: {Key: KeyScriptor, Name: "Scriptor", Dashboard: "scriptor-editor", Icon: "file-text"},
	KeyAurum:    {Key: KeyAurum, Name: "Aurum", Dashboard: "aurum-ledger", Icon: "coins"},
	KeyLumen:    {Key: KeyLumen, Name: "Lumen", Dashboard: "lumen-insights", Icon: "chart-line"},
	KeyAtrium:   {Key: KeyAtrium, Name: "Atrium", Dashboard: "atrium-portal", Icon: "users"},
}

// Resolve maps a raw key (any casing, with or without the "_key" suffix) to
// its surface. Pure lookup, no side effects.
func Resolve(raw string) (Surface, error) {
	key := Key(permissions.NormalizeModuleKey(raw))
	surface, ok := surfaces[key]
	if !ok {
		return Surface{}, ErrUnknownModule
	}
	return surface, nil
}
