package opc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yuanying/opcpkg/internal/fixture"
	"github.com/yuanying/opcpkg/opc/packuri"
)

// xmlFactory parses every "+xml" content type into an XMLPart.
func xmlFactory(t *testing.T) *PartFactory {
	t.Helper()
	f := NewPartFactory()
	require.NoError(t, f.RegisterFallback(func(ct string) Constructor {
		if strings.HasSuffix(ct, "+xml") {
			return LoadXMLPart
		}
		return nil
	}))
	return f
}

func openFixture(t *testing.T, items fixture.Items) *Package {
	t.Helper()
	pkg, err := OpenBytes(items.Zip(), Options{Factory: xmlFactory(t)})
	require.NoError(t, err)
	return pkg
}

func mustPart(t *testing.T, pkg *Package, name packuri.URI) Part {
	t.Helper()
	part, ok := pkg.PartByName(name)
	require.True(t, ok, "part %s not found", name)
	return part
}

func partNames(parts []Part) []packuri.URI {
	names := make([]packuri.URI, 0, len(parts))
	for _, p := range parts {
		names = append(names, p.PartName())
	}
	return names
}
