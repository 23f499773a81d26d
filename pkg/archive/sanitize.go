package archive

import (
	"path/filepath"
	"strings"
)

// ImageExtensions is the allow-list of image extensions accepted from ZIP uploads.
var ImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".bmp":  {},
}

const invalidNameChars = `<>:"/\|?*`

func isInvalidNameRune(r rune) bool {
	return r < 0x20 || r == 0x7f || strings.ContainsRune(invalidNameChars, r)
}

// BaseName returns the last element of an archive entry path. Both slash
// styles are treated as separators since ZIPs built on Windows often use '\'.
func BaseName(name string) string {
	name = strings.TrimRight(name, `/\`)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Extension returns the lower-cased extension of name including the dot.
func Extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// IsImageExtension reports whether ext is on the image allow-list.
func IsImageExtension(ext string) bool {
	_, ok := ImageExtensions[strings.ToLower(ext)]
	return ok
}

// SanitizeFileName splits name on characters that are invalid in a file
// name, drops the empty pieces, joins the rest with '_' and trims
// surrounding whitespace. "a/b*c.png" becomes "a_b_c.png".
func SanitizeFileName(name string) string {
	parts := strings.FieldsFunc(name, isInvalidNameRune)
	sanitized := strings.TrimSpace(strings.Join(parts, "_"))
	if sanitized == "." || sanitized == ".." {
		return ""
	}
	return sanitized
}
