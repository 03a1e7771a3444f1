package discovery

import (
	"fmt"
	"regexp"
	"strings"
)

// ManifestSuffix marks checksum companion files. Manifests are consumed only
// by validation and never become packages themselves.
const ManifestSuffix = ".md5"

// packageNamePattern is the validated grammar for package entries:
// survey token, numeric fileset identifier, numeric sequence, tar container
// with optional gzip compression. Malformed names fail parsing explicitly
// instead of risking a silent misparse.
var packageNamePattern = regexp.MustCompile(
	`^(?P<survey>[A-Za-z0-9][A-Za-z0-9.-]*)_(?P<fileset>[0-9]+)_(?P<seq>[0-9]+)\.tar(?P<gz>\.gz)?$`,
)

// PackageName is the parsed form of a package entry name.
type PackageName struct {
	Survey     string
	FilesetID  string
	Sequence   string
	Compressed bool
}

// ParsePackageName validates an entry name against the package grammar.
func ParsePackageName(name string) (PackageName, error) {
	match := packageNamePattern.FindStringSubmatch(name)
	if match == nil {
		return PackageName{}, fmt.Errorf("entry %q does not match the package name grammar", name)
	}
	parsed := PackageName{}
	for i, group := range packageNamePattern.SubexpNames() {
		switch group {
		case "survey":
			parsed.Survey = match[i]
		case "fileset":
			parsed.FilesetID = match[i]
		case "seq":
			parsed.Sequence = match[i]
		case "gz":
			parsed.Compressed = match[i] != ""
		}
	}
	return parsed, nil
}

// IsManifest reports whether an entry name is a checksum manifest.
func IsManifest(name string) bool {
	return strings.HasSuffix(name, ManifestSuffix)
}
