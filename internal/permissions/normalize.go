package permissions

import "strings"

// keySuffix marks module identifiers coming from config-style call sites
// ("NEXUS_KEY"); the raw form ("nexus") comes from the catalog. Every
// comparison must go through NormalizeModuleKey so the two forms meet.
const keySuffix = "_key"

// NormalizeModuleKey lower-cases a module identifier and strips the trailing
// "_key" marker. Idempotent.
func NormalizeModuleKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.TrimSuffix(key, keySuffix)
	return key
}
