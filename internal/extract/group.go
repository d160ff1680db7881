package extract

import "strings"

// CanonicalGroupKey strips the "(seed)" suffix from a raw group identifier:
// "METADATA(7)" canonicalizes to "METADATA". Bare identifiers pass through;
// empty stays empty. Seeds change when a group is recreated, so the canonical
// key is what ties a group's history together.
func CanonicalGroupKey(gid string) string {
	if gid == "" {
		return ""
	}
	if m := cpGroupIDRe.FindStringSubmatch(gid); m != nil {
		return m[1]
	}
	if i := strings.LastIndex(gid, "("); i >= 0 && strings.HasSuffix(gid, ")") {
		return gid[:i]
	}
	return gid
}

// splitGroupID separates "name(seed)" into its parts. A bare identifier has
// an empty seed.
func splitGroupID(gid string) (name, seed string) {
	if i := strings.LastIndex(gid, "("); i >= 0 && strings.HasSuffix(gid, ")") {
		name, seed = gid[:i], gid[i+1:len(gid)-1]
		if seed == name {
			return name, ""
		}
		return name, seed
	}
	return gid, ""
}

// groupFromLogger pulls a group name out of a logger suffix like
// "...RaftNode(METADATA)".
func groupFromLogger(logger string) string {
	if m := loggerGroupSuffixRe.FindStringSubmatch(logger); m != nil {
		return m[1]
	}
	return ""
}

func trimSpace(s string) string { return strings.TrimSpace(s) }
