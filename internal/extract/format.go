package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// Kind identifies how an archive is handled.
type Kind int

const (
	KindUnknown Kind = iota
	KindZip
	KindMsi
	KindSevenZipFamily
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindZip:
		return "zip"
	case KindMsi:
		return "msi"
	case KindSevenZipFamily:
		return "7z"
	case KindUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// sevenZipFamily lists the extensions grouped under KindSevenZipFamily.
// Membership is checked against the extension as written, so upper-case
// variants are not members.
var sevenZipFamily = []string{
	"gz", "tar", "tgz", "lzma", "bz", "bz2", "7z", "rar", "iso", "xz", "lzh", "nupkg",
}

// Format is the result of classifying a path. Ext is only set for
// KindUnsupported and holds the extension in its original case.
type Format struct {
	Kind Kind
	Ext  string
}

var (
	Zip            = Format{Kind: KindZip}
	Msi            = Format{Kind: KindMsi}
	SevenZipFamily = Format{Kind: KindSevenZipFamily}
	Unknown        = Format{Kind: KindUnknown}
)

func Unsupported(ext string) Format {
	return Format{Kind: KindUnsupported, Ext: ext}
}

func (f Format) String() string {
	if f.Kind == KindUnsupported {
		return fmt.Sprintf("unsupported(%s)", f.Ext)
	}
	return f.Kind.String()
}

// Supported reports whether an extractor tool is bound to the format.
func (f Format) Supported() bool {
	switch f.Kind {
	case KindZip, KindMsi, KindSevenZipFamily:
		return true
	default:
		return false
	}
}

// Extension returns the extension of the last element of path, without the
// leading dot. Names without a dot, names whose only dot is the first
// character and the "." and ".." elements have no extension.
func Extension(path string) (string, bool) {
	name := filepath.Base(path)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", false
	}

	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return "", false
	}

	return name[idx+1:], true
}

// Classify derives the Format of path from its extension.
func Classify(path string) Format {
	ext, ok := Extension(path)
	if !ok {
		return Unknown
	}

	if !utf8.ValidString(ext) {
		return Unsupported(lossyUTF8(ext))
	}

	return classifyExtension(ext)
}

// lossyUTF8 replaces every invalid byte of s with U+FFFD.
func lossyUTF8(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		b.WriteRune(r)
		s = s[size:]
	}
	return b.String()
}

func classifyExtension(ext string) Format {
	switch strings.ToLower(ext) {
	case "zip":
		return Zip
	case "msi":
		return Msi
	}

	if lo.Contains(sevenZipFamily, ext) {
		return SevenZipFamily
	}

	return Unsupported(ext)
}
