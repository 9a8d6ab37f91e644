package docgraph

import (
	"path/filepath"
	"strings"
)

// Resolve turns a reference written in the document at fromAbs into an
// absolute, cleaned path. "./x" is joined to the document's directory without
// its prefix, "../x" is joined as-is, and anything else is treated as a name
// inside the document's directory. References are never resolved against the
// project root.
func Resolve(fromAbs, ref string) string {
	ref = strings.ReplaceAll(ref, `\`, "/")
	dir := filepath.Dir(fromAbs)

	if strings.HasPrefix(ref, "./") {
		ref = ref[2:]
	}
	// Join cleans, so "../" segments are folded here.
	return filepath.Join(dir, filepath.FromSlash(ref))
}

// IsVariant reports whether name is a secondary-language file, i.e. its stem
// ends with suffix.
func IsVariant(name, suffix string) bool {
	if suffix == "" {
		return false
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.HasSuffix(stem, suffix)
}

// VariantName returns name with suffix inserted before the extension, unless
// it already carries it.
func VariantName(name, suffix string) string {
	if suffix == "" || IsVariant(name, suffix) {
		return name
	}
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + suffix + ext
}
