package pack

import (
	"path/filepath"
	"strconv"
	"strings"
)

// standardPNGSizes is the fixed set of recognized square PNG sizes.
var standardPNGSizes = []int{16, 24, 32, 48, 64, 96, 128, 256}

// IconEntry maps one icon source file to its staged destination under the
// FHS icon tree.
type IconEntry struct {
	// Source is the candidate icon file supplied by the user.
	Source string
	// Staged is the destination path under shareIcons.
	Staged string
}

// IconSet is the outcome of icon resolution for one build.
type IconSet struct {
	// PrimeSource is the canonical icon chosen for the kind, empty when no
	// candidate matched.
	PrimeSource string
	// PrimeStaged is the prime icon's destination directly under the pack
	// root, empty when PrimeSource is empty.
	PrimeStaged string
	// Entries are the (source, staged) pairs for the FHS icon tree, always
	// empty on Windows kinds.
	Entries []IconEntry
}

// ResolveIcons selects the prime icon and the icon map for the build
// described by ctx. Candidates are scanned in input order; duplicate
// sources collapse to the first occurrence.
//
// Prime selection: first .ico on Windows kinds, otherwise first .svg,
// otherwise the PNG with the largest recognized standard size. A PNG whose
// filename does not encode a recognized size is a validation error, never a
// silent skip. Candidates with other extensions are ignored.
func ResolveIcons(candidates []string, ctx *BuildContext) (*IconSet, error) {
	set := &IconSet{}

	seen := make(map[string]struct{}, len(candidates))
	unique := make([]string, 0, len(candidates))

	for _, candidate := range candidates {
		if _, found := seen[candidate]; found {
			continue
		}

		seen[candidate] = struct{}{}
		unique = append(unique, candidate)
	}

	prime, err := selectPrimeIcon(unique, ctx.Kind)
	if err != nil {
		return nil, err
	}

	if prime != "" {
		set.PrimeSource = prime
		set.PrimeStaged = filepath.Join(ctx.PackRoot, ctx.AppID+iconExtension(prime))
	}

	if ctx.Kind.IsWindows() {
		return set, nil
	}

	for _, candidate := range unique {
		switch iconExtension(candidate) {
		case ".svg":
			set.Entries = append(set.Entries, IconEntry{
				Source: candidate,
				Staged: filepath.Join(ctx.ShareIcons, "hicolor", "scalable", "apps", ctx.AppID+".svg"),
			})
		case ".png":
			size, ok := pngSize(candidate)
			if !ok {
				return nil, &IconFormatError{Path: candidate}
			}

			dimension := strconv.Itoa(size) + "x" + strconv.Itoa(size)
			set.Entries = append(set.Entries, IconEntry{
				Source: candidate,
				Staged: filepath.Join(ctx.ShareIcons, "hicolor", dimension, "apps", ctx.AppID+".png"),
			})
		}
	}

	return set, nil
}

// selectPrimeIcon applies the prime-selection rules over candidates in
// input order.
func selectPrimeIcon(candidates []string, kind Kind) (string, error) {
	if kind.IsWindows() {
		for _, candidate := range candidates {
			if iconExtension(candidate) == ".ico" {
				return candidate, nil
			}
		}
	}

	for _, candidate := range candidates {
		if iconExtension(candidate) == ".svg" {
			return candidate, nil
		}
	}

	var (
		best     string
		bestSize int
	)

	for _, candidate := range candidates {
		if iconExtension(candidate) != ".png" {
			continue
		}

		size, ok := pngSize(candidate)
		if !ok {
			return "", &IconFormatError{Path: candidate}
		}

		// Ties keep the first encountered.
		if size > bestSize {
			best, bestSize = candidate, size
		}
	}

	return best, nil
}

// pngSize extracts a recognized standard size from a PNG filename.
// Both "NxN" tokens and bare numeric tokens are accepted, so
// "icon.64x64.png", "icon-64.png" and "64x64.png" all resolve to 64.
func pngSize(path string) (int, bool) {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	tokens := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == '.' || r == '-' || r == '_'
	})

	for _, token := range tokens {
		if size, ok := parseSizeToken(token); ok {
			return size, true
		}
	}

	return 0, false
}

// parseSizeToken matches "N" or "NxN" against the standard size set.
func parseSizeToken(token string) (int, bool) {
	if left, right, found := strings.Cut(token, "x"); found {
		if left != right {
			return 0, false
		}

		token = left
	}

	size, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}

	for _, standard := range standardPNGSizes {
		if size == standard {
			return size, true
		}
	}

	return 0, false
}

// iconExtension returns the lower-cased extension of an icon path.
func iconExtension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
